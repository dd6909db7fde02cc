package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wispdb/wisp/bookmark"
	"github.com/wispdb/wisp/csvio"
	"github.com/wispdb/wisp/engine"
)

// Session is the state of one interactive connection: the engine, the
// bookmark store, transaction status, display settings, and the
// in-memory history log. It is owned by a single REPL loop and is not
// safe for concurrent use.
type Session struct {
	eng   *engine.Engine
	books *bookmark.Store
	tx    TxTracker

	format   Format
	rowLimit int

	history    []string
	lastSelect string
	buffer     strings.Builder

	out   io.Writer
	shell func() error
}

// Options configures a new session. A zero RowLimit means unlimited.
type Options struct {
	Format   Format
	RowLimit int
	Out      io.Writer
	// Shell runs the pass-through shell when the user types .shell.
	// Left nil, the command reports that shell mode is unavailable.
	Shell func() error
}

// New builds a session around an open engine and bookmark store.
func New(eng *engine.Engine, books *bookmark.Store, opts Options) *Session {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Session{
		eng:      eng,
		books:    books,
		format:   opts.Format,
		rowLimit: opts.RowLimit,
		out:      out,
		shell:    opts.Shell,
	}
}

// Prompt returns the prompt for the next input line: a continuation
// marker while a statement is buffered, and a star while a transaction
// is open.
func (s *Session) Prompt() string {
	if s.buffer.Len() > 0 {
		return "  ...> "
	}
	if s.tx.Active() {
		return "wisp*> "
	}
	return "wisp> "
}

// Pending reports whether a partial SQL statement is buffered.
func (s *Session) Pending() bool { return s.buffer.Len() > 0 }

// ResetPending drops any buffered partial statement, e.g. after an
// interrupt.
func (s *Session) ResetPending() { s.buffer.Reset() }

// History returns the lines dispatched so far, oldest first.
func (s *Session) History() []string { return s.history }

// TxStatus returns the session's transaction status.
func (s *Session) TxStatus() TxStatus { return s.tx.Status() }

// Dispatch processes one input line and reports whether the session
// should end. Meta-commands act immediately; SQL accumulates until the
// statement terminator appears outside any string literal. Errors are
// rendered on the session writer and never end the session.
func (s *Session) Dispatch(line string) (quit bool) {
	trimmed := strings.TrimSpace(line)

	if s.buffer.Len() == 0 {
		if trimmed == "" {
			return false
		}
		if strings.HasPrefix(trimmed, ".") {
			s.history = append(s.history, trimmed)
			return s.dispatchMeta(trimmed)
		}
	}

	// Embedded newlines stay in the buffer verbatim; string literals
	// may span lines.
	if s.buffer.Len() > 0 {
		s.buffer.WriteByte('\n')
	}
	s.buffer.WriteString(line)

	if !sqlComplete(s.buffer.String()) {
		return false
	}

	sql := strings.TrimSpace(s.buffer.String())
	s.buffer.Reset()
	s.history = append(s.history, sql)

	// A completed buffer may bundle several statements; each one goes
	// through runSQL on its own so transaction control is never swept
	// into a multi-statement exec behind the tracker's back.
	for _, stmt := range splitStatements(sql) {
		s.runSQL(stmt)
	}
	return false
}

// Close ends the session. An open transaction is rolled back, never
// silently committed, and the rollback is announced as a warning.
func (s *Session) Close() error {
	if !s.tx.Active() {
		return nil
	}
	fmt.Fprintln(s.out, "Warning: rolling back open transaction")
	return s.tx.Rollback(s.eng)
}

func (s *Session) runSQL(sql string) {
	switch classifyTxStatement(sql) {
	case txBegin:
		s.report(s.tx.Begin(s.eng), "Transaction started.")
	case txCommit:
		s.report(s.tx.Commit(s.eng), "Transaction committed.")
	case txRollback:
		s.report(s.tx.Rollback(s.eng), "Transaction rolled back.")
	default:
		s.execSQL(sql)
	}
}

func (s *Session) execSQL(sql string) {
	if isRowReturning(sql) {
		rs, err := s.eng.Query(sql)
		if err != nil {
			s.printError(err)
			return
		}
		// DML with a RETURNING clause renders rows but must not become
		// the export source; re-running it would mutate data again.
		if !isMutation(sql) {
			s.lastSelect = sql
		}
		if err := s.render(rs); err != nil {
			s.printError(err)
		}
		return
	}

	affected, err := s.eng.Execute(sql)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "%d row(s) affected\n", affected)
}

// isRowReturning decides between the query and execute paths. A leading
// parenthesis is a parenthesized query; DML takes the query path only
// when it carries a RETURNING clause.
func isRowReturning(sql string) bool {
	trimmed := strings.TrimSpace(sql)
	if strings.HasPrefix(trimmed, "(") {
		return true
	}
	switch strings.ToLower(firstWord(trimmed)) {
	case "select", "with", "values", "pragma", "explain":
		return true
	case "insert", "update", "delete", "replace":
		return hasReturningClause(trimmed)
	default:
		return false
	}
}

func isMutation(sql string) bool {
	switch strings.ToLower(firstWord(strings.TrimSpace(sql))) {
	case "insert", "update", "delete", "replace":
		return true
	default:
		return false
	}
}

// hasReturningClause scans for the RETURNING keyword outside any string
// literal, so a quoted 'returning' value never flips the routing.
func hasReturningClause(sql string) bool {
	const (
		plain = iota
		single
		double
	)

	state := plain
	var word strings.Builder
	for i := 0; i < len(sql); i++ {
		c := sql[i]
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
			switch {
			case c == '\'':
				state = single
				word.Reset()
			case c == '"':
				state = double
				word.Reset()
			case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c >= '0' && c <= '9':
				word.WriteByte(c)
			default:
				if strings.EqualFold(word.String(), "returning") {
					return true
				}
				word.Reset()
			}
		}
	}
	return strings.EqualFold(word.String(), "returning")
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ';' {
			return s[:i]
		}
	}
	return s
}

func (s *Session) dispatchMeta(line string) (quit bool) {
	cmd, err := classify(line)
	if err != nil {
		s.printError(err)
		return false
	}

	switch cmd.kind {
	case cmdExit:
		return true
	case cmdHelp:
		s.printHelp()
	case cmdTables:
		s.cmdTables()
	case cmdSchema:
		s.cmdSchema(cmd.args)
	case cmdStats:
		s.cmdStats()
	case cmdFormat:
		s.cmdFormat(cmd.args)
	case cmdLimit:
		s.cmdLimit(cmd.args)
	case cmdBegin:
		s.report(s.tx.Begin(s.eng), "Transaction started.")
	case cmdCommit:
		s.report(s.tx.Commit(s.eng), "Transaction committed.")
	case cmdRollback:
		s.report(s.tx.Rollback(s.eng), "Transaction rolled back.")
	case cmdStatus:
		if s.tx.Active() {
			fmt.Fprintln(s.out, "Transaction is active.")
		} else {
			fmt.Fprintln(s.out, "No active transaction.")
		}
	case cmdBookmark:
		s.cmdBookmark(cmd.args)
	case cmdImport:
		s.cmdImport(cmd.args)
	case cmdExport:
		s.cmdExport(cmd.args)
	case cmdShell:
		if s.shell == nil {
			fmt.Fprintln(s.out, "Shell mode is not available in this session.")
		} else if err := s.shell(); err != nil {
			s.printError(err)
		}
	case cmdClear:
		fmt.Fprint(s.out, "\x1b[2J\x1b[H")
	case cmdHistory:
		s.cmdHistory()
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type .help for commands)\n", cmd.name)
	}
	return false
}

func (s *Session) cmdTables() {
	tables, err := s.eng.Tables()
	if err != nil {
		s.printError(err)
		return
	}
	if len(tables) == 0 {
		fmt.Fprintln(s.out, "No tables found.")
		return
	}
	for _, name := range tables {
		fmt.Fprintln(s.out, name)
	}
}

func (s *Session) cmdSchema(args []string) {
	if len(args) > 0 {
		s.printSchema(args[0])
		return
	}

	tables, err := s.eng.Tables()
	if err != nil {
		s.printError(err)
		return
	}
	if len(tables) == 0 {
		fmt.Fprintln(s.out, "No tables found.")
		return
	}
	for i, name := range tables {
		if i > 0 {
			fmt.Fprintln(s.out)
		}
		s.printSchema(name)
	}
}

func (s *Session) printSchema(table string) {
	cols, err := s.eng.Schema(table)
	if err != nil {
		s.printError(err)
		return
	}

	fmt.Fprintf(s.out, "Schema for table %s:\n", table)
	tbl := newTable(s.out)
	tbl.Header([]string{"Name", "Type", "Not Null", "Default", "Primary Key"})
	for _, col := range cols {
		def := col.Default
		if def == "" {
			def = "NULL"
		}
		tbl.Row([]string{col.Name, col.Type, yesNo(col.NotNull), def, yesNo(col.PrimaryKey)})
	}
	tbl.Render()
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func (s *Session) cmdStats() {
	st, err := s.eng.Stats()
	if err != nil {
		s.printError(err)
		return
	}

	fmt.Fprintln(s.out, "Database Information:")
	fmt.Fprintf(s.out, "  Path: %s\n", st.Path)
	fmt.Fprintf(s.out, "  Size: %.2f MB\n", float64(st.SizeBytes)/(1024*1024))
	fmt.Fprintf(s.out, "  SQLite Version: %s\n", st.Version)
	fmt.Fprintf(s.out, "  Page Size: %d bytes\n", st.PageSize)
	fmt.Fprintf(s.out, "  Page Count: %d\n", st.PageCount)

	fmt.Fprintln(s.out, "\nTable Statistics:")
	var total int64
	for _, tc := range st.Tables {
		fmt.Fprintf(s.out, "  %s: %d rows\n", tc.Name, tc.Rows)
		total += tc.Rows
	}
	fmt.Fprintf(s.out, "  Total Rows: %d\n", total)
}

func (s *Session) cmdFormat(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "Current format: %s\n", s.format)
		fmt.Fprintln(s.out, "Usage: .format [table|json|csv]")
		return
	}
	format, err := ParseFormat(args[0])
	if err != nil {
		s.printError(err)
		return
	}
	s.format = format
	fmt.Fprintf(s.out, "Output format set to %s\n", format)
}

func (s *Session) cmdLimit(args []string) {
	if len(args) == 0 {
		if s.rowLimit == 0 {
			fmt.Fprintln(s.out, "No row limit set")
		} else {
			fmt.Fprintf(s.out, "Current row limit: %d\n", s.rowLimit)
		}
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		fmt.Fprintln(s.out, "Invalid limit value. Use a positive number or 0 for no limit.")
		return
	}
	s.rowLimit = n
	if n == 0 {
		fmt.Fprintln(s.out, "Row limit removed")
	} else {
		fmt.Fprintf(s.out, "Row limit set to %d\n", n)
	}
}

func (s *Session) cmdBookmark(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: .bookmark [save|list|run|show|delete] [args...]")
		return
	}

	switch args[0] {
	case "save":
		if len(args) < 2 {
			fmt.Fprintln(s.out, `Usage: .bookmark save NAME ["QUERY"] ["DESCRIPTION"]`)
			return
		}
		name := args[1]
		query := s.lastSelect
		desc := ""
		if len(args) > 2 {
			query = args[2]
		}
		if len(args) > 3 {
			desc = strings.Join(args[3:], " ")
		}
		if strings.TrimSpace(query) == "" {
			fmt.Fprintln(s.out, "No query to save. Pass one or execute a SELECT first.")
			return
		}
		if err := s.books.Save(name, query, desc); err != nil {
			s.printError(err)
			return
		}
		fmt.Fprintf(s.out, "Bookmark %q saved.\n", name)
	case "list":
		s.listBookmarks()
	case "run":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: .bookmark run NAME")
			return
		}
		bm, err := s.books.Get(args[1])
		if err != nil {
			s.printError(err)
			return
		}
		fmt.Fprintf(s.out, "Executing bookmark %q: %s\n", bm.Name, bm.Query)
		s.execSQL(bm.Query)
	case "show":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: .bookmark show NAME")
			return
		}
		bm, err := s.books.Get(args[1])
		if err != nil {
			s.printError(err)
			return
		}
		fmt.Fprintf(s.out, "Bookmark: %s\n", bm.Name)
		if bm.Description != "" {
			fmt.Fprintf(s.out, "Description: %s\n", bm.Description)
		}
		fmt.Fprintf(s.out, "Created: %s\n", bm.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(s.out, "Query:\n%s\n", bm.Query)
	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: .bookmark delete NAME")
			return
		}
		if err := s.books.Delete(args[1]); err != nil {
			s.printError(err)
			return
		}
		fmt.Fprintf(s.out, "Bookmark %q deleted.\n", args[1])
	default:
		fmt.Fprintln(s.out, "Unknown bookmark command. Use: save, list, run, show, or delete")
	}
}

func (s *Session) listBookmarks() {
	all, err := s.books.List()
	if err != nil {
		s.printError(err)
		return
	}
	if len(all) == 0 {
		fmt.Fprintln(s.out, "No bookmarks saved.")
		return
	}

	tbl := newTable(s.out)
	tbl.Header([]string{"Name", "Description", "Created", "Query"})
	for _, bm := range all {
		preview := bm.Query
		if len(preview) > 50 {
			preview = preview[:47] + "..."
		}
		desc := bm.Description
		if desc == "" {
			desc = "(no description)"
		}
		tbl.Row([]string{bm.Name, desc, bm.CreatedAt.Format("2006-01-02 15:04"), preview})
	}
	tbl.Render()
}

func (s *Session) cmdImport(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: .import CSV_FILE TABLE")
		return
	}
	if s.tx.Active() {
		fmt.Fprintln(s.out, "Error: cannot import while a transaction is in progress")
		return
	}

	res, err := csvio.Import(s.eng, args[0], args[1])
	if err != nil {
		s.printError(err)
		return
	}

	for _, re := range res.RowErrors {
		fmt.Fprintf(s.out, "Skipped %v\n", re)
	}
	fmt.Fprintf(s.out, "Imported %d row(s) into %s, %d skipped\n", res.Imported, args[1], res.Skipped)
}

func (s *Session) cmdExport(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: .export FILENAME")
		return
	}
	if s.lastSelect == "" {
		fmt.Fprintln(s.out, "No SELECT query has been executed yet.")
		return
	}

	rs, err := s.eng.Query(s.lastSelect)
	if err != nil {
		s.printError(err)
		return
	}
	n, err := csvio.ExportFile(args[0], rs)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "Exported %d row(s) to %s\n", n, args[0])
}

func (s *Session) cmdHistory() {
	if len(s.history) == 0 {
		fmt.Fprintln(s.out, "No command history")
		return
	}
	start := 0
	if len(s.history) > 20 {
		start = len(s.history) - 20
	}
	for i := start; i < len(s.history); i++ {
		fmt.Fprintf(s.out, "  %3d  %s\n", i+1, s.history[i])
	}
}

func (s *Session) report(err error, success string) {
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintln(s.out, success)
}

func (s *Session) printError(err error) {
	if errors.Is(err, bookmark.ErrNotFound) {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if kind := engine.KindOf(err); kind != engine.KindOther {
		fmt.Fprintf(s.out, "Error (%s): %v\n", kind, err)
		return
	}
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func (s *Session) printHelp() {
	fmt.Fprint(s.out, `Commands:
  .tables                              List all tables
  .schema [TABLE]                      Show schema for one table or all
  .stats                               Show database statistics
  .format [table|json|csv]             Set or show the output format
  .limit [N]                           Set or show the row limit (0 = no limit)
  .begin / .commit / .rollback         Transaction control
  .status                              Show transaction status
  .bookmark save NAME ["QUERY"] ["DESC"]  Save a query (defaults to last SELECT)
  .bookmark list                       List saved bookmarks
  .bookmark run NAME                   Execute a saved bookmark
  .bookmark show NAME                  Show bookmark details
  .bookmark delete NAME                Delete a bookmark
  .import CSV_FILE TABLE               Import a CSV file into a table
  .export FILENAME                     Export the last SELECT to a CSV file
  .shell                               Switch to shell mode
  .history                             Show recent commands
  .clear                               Clear the screen
  .help                                Show this help
  .exit / .quit                        Leave the session

SQL statements end with a semicolon and may span multiple lines.
BEGIN, COMMIT and ROLLBACK are tracked; the prompt shows * while a
transaction is open. Quote arguments that contain spaces, doubling any
embedded quotes: .bookmark save top "select * from t" "my ""top"" rows"
`)
}
