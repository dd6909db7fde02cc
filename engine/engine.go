package engine

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Engine is the adapter over one SQLite database file.
type Engine struct {
	db   *sql.DB
	path string
}

// Open connects to the SQLite database at path. The pool is pinned to a
// single connection so that explicit transaction statements and the
// statements executed inside them share one connection.
func Open(path string) (*Engine, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, wrap(err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrap(err)
	}

	return &Engine{db: db, path: path}, nil
}

// NewFromDB wraps an already-open database handle. Used by tests that
// substitute a mock driver.
func NewFromDB(db *sql.DB, path string) *Engine {
	return &Engine{db: db, path: path}
}

// Path returns the database file path the engine was opened with.
func (e *Engine) Path() string { return e.path }

// Close releases the underlying connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Execute runs a statement that returns no rows and reports the number
// of rows it affected.
func (e *Engine) Execute(query string, args ...any) (int64, error) {
	res, err := e.db.Exec(query, args...)
	if err != nil {
		return 0, wrap(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, wrap(err)
	}
	return affected, nil
}

// Query runs a row-returning statement and materializes the full
// result set with typed cells.
func (e *Engine) Query(query string, args ...any) (*ResultSet, error) {
	rows, err := e.db.Query(query, args...)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, wrap(err)
	}

	rs := &ResultSet{Columns: columns}
	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrap(err)
		}
		row := make([]Value, len(columns))
		for i, cell := range raw {
			row[i] = fromDriver(cell)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}

	return rs, nil
}

// Begin starts an explicit transaction on the session connection.
func (e *Engine) Begin() error {
	_, err := e.db.Exec("BEGIN")
	return wrap(err)
}

// Commit ends the current explicit transaction, keeping its writes.
func (e *Engine) Commit() error {
	_, err := e.db.Exec("COMMIT")
	return wrap(err)
}

// Rollback ends the current explicit transaction, discarding its writes.
func (e *Engine) Rollback() error {
	_, err := e.db.Exec("ROLLBACK")
	return wrap(err)
}

// Tables lists user tables in name order.
func (e *Engine) Tables() ([]string, error) {
	rs, err := e.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, rs.NumRows())
	for _, row := range rs.Rows {
		names = append(names, row[0].Text)
	}
	return names, nil
}

// Column describes one column of a table as SQLite declares it.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	Default    string
	PrimaryKey bool
}

// Schema returns the column layout of a table in declaration order.
func (e *Engine) Schema(table string) ([]Column, error) {
	rs, err := e.Query(fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, err
	}
	if rs.NumRows() == 0 {
		return nil, &Error{Kind: KindOther, Err: fmt.Errorf("no such table: %s", table)}
	}

	// table_info columns: cid, name, type, notnull, dflt_value, pk
	cols := make([]Column, 0, rs.NumRows())
	for _, row := range rs.Rows {
		col := Column{
			Name:       row[1].Text,
			Type:       row[2].Text,
			NotNull:    row[3].Int != 0,
			PrimaryKey: row[5].Int != 0,
		}
		if row[4].Kind != Null {
			col.Default = row[4].Display()
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// TableCount pairs a table name with its current row count.
type TableCount struct {
	Name string
	Rows int64
}

// Stats summarizes the database file and its contents.
type Stats struct {
	Path      string
	SizeBytes int64
	Version   string
	PageSize  int64
	PageCount int64
	Tables    []TableCount
}

// Stats collects file-level and per-table statistics.
func (e *Engine) Stats() (*Stats, error) {
	st := &Stats{Path: e.path}

	if info, err := os.Stat(e.path); err == nil {
		st.SizeBytes = info.Size()
	}

	if rs, err := e.Query("SELECT sqlite_version()"); err == nil && rs.NumRows() > 0 {
		st.Version = rs.Rows[0][0].Text
	}
	if rs, err := e.Query("PRAGMA page_size"); err == nil && rs.NumRows() > 0 {
		st.PageSize = rs.Rows[0][0].Int
	}
	if rs, err := e.Query("PRAGMA page_count"); err == nil && rs.NumRows() > 0 {
		st.PageCount = rs.Rows[0][0].Int
	}

	tables, err := e.Tables()
	if err != nil {
		return nil, err
	}
	for _, name := range tables {
		rs, err := e.Query(fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteIdent(name)))
		if err != nil {
			return nil, err
		}
		st.Tables = append(st.Tables, TableCount{Name: name, Rows: rs.Rows[0][0].Int})
	}

	return st, nil
}

// IntegrityCheck runs SQLite's own integrity check and fails unless it
// comes back clean.
func (e *Engine) IntegrityCheck() error {
	rs, err := e.Query("PRAGMA integrity_check")
	if err != nil {
		return err
	}
	if rs.NumRows() == 0 || rs.Rows[0][0].Text != "ok" {
		return &Error{Kind: KindIO, Err: fmt.Errorf("integrity check failed for %s", e.path)}
	}
	return nil
}

// QuoteIdent quotes an identifier for safe interpolation into SQL text,
// doubling any embedded quote characters.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
