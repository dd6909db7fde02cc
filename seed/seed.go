// Package seed generates synthetic rows for load and query testing.
package seed

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wispdb/wisp/engine"
)

// DataType is the SQLite storage type of a generated column.
type DataType int

const (
	TypeInteger DataType = iota
	TypeText
	TypeReal
	TypeBoolean
	TypeTimestamp
	TypeUUID
)

func (t DataType) declared() string {
	switch t {
	case TypeInteger, TypeBoolean:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Distribution selects how values for a column are drawn.
type Distribution int

const (
	DistSequential Distribution = iota
	DistUniform
	DistNormal
)

// Column describes one generated column.
type Column struct {
	Name     string
	Type     DataType
	Dist     Distribution
	Nullable bool

	// Mean and StdDev apply to DistNormal columns.
	Mean   float64
	StdDev float64
}

// Config describes a population run.
type Config struct {
	Table     string
	Rows      int
	BatchSize int
	// Seed fixes the random source; zero means time-seeded.
	Seed    int64
	Columns []Column
}

// DefaultConfig is a three-column table: a sequential id, a nullable
// random text column, and a normally distributed real value.
func DefaultConfig(table string, rows int) Config {
	return Config{
		Table:     table,
		Rows:      rows,
		BatchSize: 10000,
		Columns: []Column{
			{Name: "id", Type: TypeInteger, Dist: DistSequential},
			{Name: "text_col", Type: TypeText, Dist: DistUniform, Nullable: true},
			{Name: "value", Type: TypeReal, Dist: DistNormal, Mean: 100, StdDev: 15},
		},
	}
}

// Populate creates cfg.Table if it does not exist and inserts cfg.Rows
// generated rows in a single transaction. Progress lines go to out.
func Populate(eng *engine.Engine, cfg Config, out io.Writer) (int, error) {
	if cfg.Table == "" || len(cfg.Columns) == 0 {
		return 0, fmt.Errorf("population needs a table name and at least one column")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10000
	}

	if err := createTable(eng, cfg); err != nil {
		return 0, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	insert := insertStatement(cfg)

	if err := eng.Begin(); err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			eng.Rollback()
		}
	}()

	args := make([]any, len(cfg.Columns))
	inserted := 0
	for i := 0; i < cfg.Rows; i++ {
		for j, col := range cfg.Columns {
			args[j] = col.generate(i, rng)
		}
		if _, err := eng.Execute(insert, args...); err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", i+1, err)
		}
		inserted++
		if inserted%cfg.BatchSize == 0 {
			fmt.Fprintf(out, "Progress: %d/%d rows (%.1f%%)\n",
				inserted, cfg.Rows, float64(inserted)/float64(cfg.Rows)*100)
		}
	}

	if err := eng.Commit(); err != nil {
		return inserted, err
	}
	committed = true
	return inserted, nil
}

func createTable(eng *engine.Engine, cfg Config) error {
	defs := make([]string, len(cfg.Columns))
	for i, col := range cfg.Columns {
		def := engine.QuoteIdent(col.Name) + " " + col.Type.declared()
		if !col.Nullable {
			def += " NOT NULL"
		}
		defs[i] = def
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		engine.QuoteIdent(cfg.Table), strings.Join(defs, ", "))
	if _, err := eng.Execute(create); err != nil {
		return fmt.Errorf("create table %s: %w", cfg.Table, err)
	}
	return nil
}

func insertStatement(cfg Config) string {
	names := make([]string, len(cfg.Columns))
	for i, col := range cfg.Columns {
		names[i] = engine.QuoteIdent(col.Name)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		engine.QuoteIdent(cfg.Table),
		strings.Join(names, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cfg.Columns)), ", "))
}

// generate draws one value. Nullable columns come up NULL one time in ten.
func (c Column) generate(rowIndex int, rng *rand.Rand) any {
	if c.Nullable && rng.Float64() < 0.1 {
		return nil
	}

	switch c.Type {
	case TypeInteger:
		switch c.Dist {
		case DistSequential:
			return int64(rowIndex)
		case DistNormal:
			return int64(rng.NormFloat64()*c.StdDev + c.Mean)
		default:
			return rng.Int63n(1000)
		}
	case TypeReal:
		if c.Dist == DistNormal {
			return rng.NormFloat64()*c.StdDev + c.Mean
		}
		return rng.Float64() * 1000
	case TypeBoolean:
		return rng.Intn(2)
	case TypeTimestamp:
		offset := time.Duration(rng.Intn(86400)) * time.Second
		return time.Now().Add(-offset).UTC().Format("2006-01-02 15:04:05")
	case TypeUUID:
		return uuid.New().String()
	default:
		return fmt.Sprintf("text-%d", rng.Intn(1000))
	}
}
