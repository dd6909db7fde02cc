package engine

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the storage class of a single result cell.
type Kind int

const (
	Null Kind = iota
	Integer
	Real
	Text
	Blob
)

// Value is one typed cell of a result row.
type Value struct {
	Kind Kind
	Int  int64
	Real float64
	Text string
	Blob []byte
}

// ResultSet is the tabular output of one query: a column-name sequence
// and the rows that go with it. It lives for one dispatch cycle only.
type ResultSet struct {
	Columns []string
	Rows    [][]Value
}

// NumRows returns the number of rows in the set.
func (rs *ResultSet) NumRows() int {
	return len(rs.Rows)
}

// Display renders the cell for human-readable output. NULL is spelled
// out and blobs are summarized rather than dumped.
func (v Value) Display() string {
	switch v.Kind {
	case Null:
		return "NULL"
	case Integer:
		return strconv.FormatInt(v.Int, 10)
	case Real:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case Blob:
		return fmt.Sprintf("<blob %d bytes>", len(v.Blob))
	default:
		return v.Text
	}
}

// Field renders the cell for CSV output, where NULL becomes the empty
// field. Every other kind matches Display.
func (v Value) Field() string {
	if v.Kind == Null {
		return ""
	}
	return v.Display()
}

// JSON returns the cell as a value encoding/json can serialize with its
// native type preserved.
func (v Value) JSON() any {
	switch v.Kind {
	case Null:
		return nil
	case Integer:
		return v.Int
	case Real:
		return v.Real
	case Blob:
		return fmt.Sprintf("<blob %d bytes>", len(v.Blob))
	default:
		return v.Text
	}
}

// fromDriver converts whatever the database/sql driver hands back into
// a typed Value. go-sqlite3 produces int64, float64, string, []byte,
// bool, time.Time, or nil.
func fromDriver(raw any) Value {
	switch val := raw.(type) {
	case nil:
		return Value{Kind: Null}
	case int64:
		return Value{Kind: Integer, Int: val}
	case float64:
		return Value{Kind: Real, Real: val}
	case string:
		return Value{Kind: Text, Text: val}
	case []byte:
		buf := make([]byte, len(val))
		copy(buf, val)
		return Value{Kind: Blob, Blob: buf}
	case bool:
		if val {
			return Value{Kind: Integer, Int: 1}
		}
		return Value{Kind: Integer, Int: 0}
	case time.Time:
		return Value{Kind: Text, Text: val.Format(time.RFC3339)}
	default:
		return Value{Kind: Text, Text: fmt.Sprint(val)}
	}
}
