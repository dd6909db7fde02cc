// Package csvio converts between result rows and RFC-4180 CSV text.
//
// Export writes a header of column names followed by one record per
// row, with NULL cells as empty fields. Import reads the header as the
// target column list and coerces each field to the narrowest type that
// fits (integer, then real, then text), guided by the table's declared
// schema for empty-field handling. One malformed row never aborts a
// whole import: it is recorded, skipped, and the accepted subset is
// committed in a single transaction.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wispdb/wisp/engine"
)

// RowError records one rejected input row by its line number in the file.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// Result summarizes a finished import.
type Result struct {
	Imported  int
	Skipped   int
	RowErrors []RowError
}

// Export writes rs to w as CSV: header first, then one record per row.
// It returns the number of data records written.
func Export(w io.Writer, rs *engine.ResultSet) (int, error) {
	cw := csv.NewWriter(w)

	if err := cw.Write(rs.Columns); err != nil {
		return 0, fmt.Errorf("write CSV header: %w", err)
	}

	record := make([]string, len(rs.Columns))
	for i, row := range rs.Rows {
		for j, cell := range row {
			record[j] = cell.Field()
		}
		if err := cw.Write(record); err != nil {
			return i, fmt.Errorf("write CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(rs.Rows), fmt.Errorf("flush CSV output: %w", err)
	}
	return len(rs.Rows), nil
}

// ExportFile writes rs to a new file at path, replacing any existing file.
func ExportFile(path string, rs *engine.ResultSet) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}

	n, err := Export(f, rs)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close export file: %w", cerr)
	}
	return n, err
}

// Import loads the CSV file at path into table. The header row names
// the target columns. Rows whose field count does not match the header,
// and rows the engine rejects, are skipped and reported; everything
// accepted is committed in one transaction. The transaction is released
// on every path out of this function.
func Import(eng *engine.Engine, path, table string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer f.Close()

	schema, err := eng.Schema(table)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]engine.Column, len(schema))
	for _, col := range schema {
		byName[strings.ToLower(col.Name)] = col
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // field-count mismatches are per-row errors, not fatal

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	cols := make([]engine.Column, len(header))
	quoted := make([]string, len(header))
	for i, name := range header {
		col, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("table %s has no column %q", table, name)
		}
		cols[i] = col
		quoted[i] = engine.QuoteIdent(col.Name)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		engine.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", "))

	if err := eng.Begin(); err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			eng.Rollback()
		}
	}()

	res := &Result{}
	args := make([]any, len(header))
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.skip(line, err)
			continue
		}
		if len(record) != len(header) {
			res.skip(line, fmt.Errorf("expected %d fields, got %d", len(header), len(record)))
			continue
		}

		for i, field := range record {
			args[i] = coerce(field, cols[i])
		}
		if _, err := eng.Execute(insert, args...); err != nil {
			res.skip(line, err)
			continue
		}
		res.Imported++
	}

	if err := eng.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

func (r *Result) skip(line int, err error) {
	r.Skipped++
	r.RowErrors = append(r.RowErrors, RowError{Line: line, Err: err})
}

// coerce maps a CSV field to a typed insert argument. Non-empty fields
// try integer, then real, then fall back to text. An empty field is
// NULL only for a nullable column without text affinity; a nullable
// text column could legitimately hold the empty string, so the
// ambiguity resolves to text to avoid losing data.
func coerce(field string, col engine.Column) any {
	if field == "" {
		if !col.NotNull && !hasTextAffinity(col.Type) {
			return nil
		}
		return ""
	}
	if n, err := strconv.ParseInt(field, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return f
	}
	return field
}

func hasTextAffinity(declared string) bool {
	up := strings.ToUpper(declared)
	return strings.Contains(up, "CHAR") || strings.Contains(up, "CLOB") || strings.Contains(up, "TEXT")
}
