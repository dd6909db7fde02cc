package session

import (
	"encoding/json"
	"fmt"

	"github.com/wispdb/wisp/csvio"
	"github.com/wispdb/wisp/engine"
)

// Format selects how query results are rendered.
type Format int

const (
	FormatTable Format = iota
	FormatJSON
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	default:
		return "table"
	}
}

// ParseFormat maps a user-typed format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatTable, fmt.Errorf("invalid format %q (available: table, json, csv)", name)
	}
}

// render writes rs in the session's current format, truncated to the
// row limit with a note when rows were cut off.
func (s *Session) render(rs *engine.ResultSet) error {
	total := rs.NumRows()
	shown := rs
	if s.rowLimit > 0 && total > s.rowLimit {
		shown = &engine.ResultSet{Columns: rs.Columns, Rows: rs.Rows[:s.rowLimit]}
	}

	switch s.format {
	case FormatJSON:
		if err := s.renderJSON(shown); err != nil {
			return err
		}
	case FormatCSV:
		if _, err := csvio.Export(s.out, shown); err != nil {
			return err
		}
	default:
		if shown.NumRows() > 0 {
			tbl := newTable(s.out)
			tbl.Header(shown.Columns)
			for _, row := range shown.Rows {
				cells := make([]string, len(row))
				for i, cell := range row {
					cells[i] = cell.Display()
				}
				tbl.Row(cells)
			}
			tbl.Render()
		}
	}

	fmt.Fprintf(s.out, "%d row(s) returned\n", total)
	if s.rowLimit > 0 && total > s.rowLimit {
		fmt.Fprintf(s.out, "(output limited to %d rows; use .limit 0 to show all)\n", s.rowLimit)
	}
	return nil
}

func (s *Session) renderJSON(rs *engine.ResultSet) error {
	rows := make([]map[string]any, 0, rs.NumRows())
	for _, row := range rs.Rows {
		obj := make(map[string]any, len(row))
		for i, cell := range row {
			obj[rs.Columns[i]] = cell.JSON()
		}
		rows = append(rows, obj)
	}

	out, err := json.MarshalIndent(map[string]any{
		"columns":   rs.Columns,
		"row_count": rs.NumRows(),
		"data":      rows,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	fmt.Fprintln(s.out, string(out))
	return nil
}
