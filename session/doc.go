// Package session implements the interactive core of wisp: it takes
// one input line at a time, decides whether it is a meta-command or
// part of a SQL statement, runs it against the engine, and renders the
// outcome.
//
// Meta-commands start with a dot and are parsed into a closed set of
// known commands; everything else accumulates in a statement buffer
// until a semicolon appears outside any string literal. The session
// also enforces begin/commit/rollback discipline through a small
// transaction tracker, so the engine is never asked to commit a
// transaction that was never started.
//
// Nothing dispatched through a session terminates the process. Every
// recoverable failure is reported on the session's writer and control
// returns to the caller for the next line.
package session
