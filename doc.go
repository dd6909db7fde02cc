// Package wisp provides an interactive SQL REPL over an embedded
// SQLite database.
//
// wisp wraps a single-connection SQLite engine with transaction
// tracking, persisted query bookmarks, multi-format result rendering
// (table, json, csv), and CSV import/export.
//
// # Quick Start
//
// Open a database and drive a session programmatically:
//
//	instance, _ := wisp.Open("app.db", wisp.Options{})
//	defer instance.Close()
//
//	sess := instance.Session()
//	sess.Dispatch("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);")
//	sess.Dispatch("INSERT INTO users (name) VALUES ('Alice');")
//	sess.Dispatch("SELECT * FROM users;")
//
// The cmd/wisp binary adds the interactive loop, line editing, and the
// init, create-table, list-tables, populate, and shell subcommands.
//
// # Meta-commands
//
// Sessions accept dot-prefixed commands alongside SQL:
//   - .tables, .schema, .stats
//   - .format, .limit
//   - .begin, .commit, .rollback, .status
//   - .bookmark save/list/run/show/delete
//   - .import, .export
//   - .shell, .history, .clear, .help, .exit / .quit
//
// SQL accumulates across lines until a semicolon outside any string
// literal; BEGIN, COMMIT and ROLLBACK statements are tracked so the
// prompt can show transaction state.
package wisp
