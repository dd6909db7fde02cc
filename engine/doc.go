// Package engine wraps the embedded SQLite engine behind the small
// capability surface the rest of wisp depends on: execute a statement,
// query rows, drive a transaction, and introspect the schema.
//
// All SQL semantics belong to SQLite; this package only maps between
// database/sql plumbing and wisp's typed result model, and tags engine
// failures with a coarse error kind (constraint, syntax, locked, I/O)
// so callers can decide how to present them.
//
// The engine holds exactly one underlying connection. The interactive
// session owns it exclusively, and explicit BEGIN/COMMIT/ROLLBACK
// statements must land on the same connection they started on.
package engine
