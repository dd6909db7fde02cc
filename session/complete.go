package session

import "strings"

// sqlComplete reports whether buf is a finished SQL statement: its last
// significant character is a semicolon that sits outside any string
// literal. The scan is a three-state machine (plain, single-quoted,
// double-quoted) consumed byte by byte; SQL's doubled-quote escape
// ('', "") falls out naturally as close-then-reopen.
func sqlComplete(buf string) bool {
	const (
		plain = iota
		single
		double
	)

	state := plain
	var last byte

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		switch state {
		case single:
			if c == '\'' {
				state = plain
			}
		case double:
			if c == '"' {
				state = plain
			}
		default:
			switch c {
			case '\'':
				state = single
			case '"':
				state = double
			}
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				last = c
			}
		}
	}

	return state == plain && last == ';'
}

// splitStatements breaks buf into individual statements on semicolons
// outside any string literal, so a line bundling transaction control
// with other SQL still has each statement dispatched on its own.
// Terminators are dropped and blank fragments skipped.
func splitStatements(buf string) []string {
	const (
		plain = iota
		single
		double
	)

	var stmts []string
	var cur strings.Builder
	state := plain

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		switch state {
		case single:
			if c == '\'' {
				state = plain
			}
		case double:
			if c == '"' {
				state = plain
			}
		default:
			switch c {
			case '\'':
				state = single
			case '"':
				state = double
			case ';':
				if stmt := strings.TrimSpace(cur.String()); stmt != "" {
					stmts = append(stmts, stmt)
				}
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(c)
	}

	if stmt := strings.TrimSpace(cur.String()); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts
}
