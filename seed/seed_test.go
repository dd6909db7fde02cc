package seed

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wispdb/wisp/engine"
)

func newSeedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestPopulateDefaultConfig(t *testing.T) {
	eng := newSeedEngine(t)

	cfg := DefaultConfig("load_test", 500)
	cfg.Seed = 42
	var out bytes.Buffer
	n, err := Populate(eng, cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, 500, n)

	rs, err := eng.Query("SELECT COUNT(*), MIN(id), MAX(id) FROM load_test")
	require.NoError(t, err)
	assert.Equal(t, int64(500), rs.Rows[0][0].Int)
	assert.Equal(t, int64(0), rs.Rows[0][1].Int)
	assert.Equal(t, int64(499), rs.Rows[0][2].Int)

	// Normal distribution around 100 should land the average nearby.
	rs, err = eng.Query("SELECT AVG(value) FROM load_test")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, rs.Rows[0][0].Real, 10.0)
}

func TestPopulateDeterministicWithSeed(t *testing.T) {
	cfg := DefaultConfig("t", 50)
	cfg.Seed = 7

	sum := func() float64 {
		eng := newSeedEngine(t)
		var out bytes.Buffer
		_, err := Populate(eng, cfg, &out)
		require.NoError(t, err)
		rs, err := eng.Query("SELECT SUM(value) FROM t")
		require.NoError(t, err)
		return rs.Rows[0][0].Real
	}

	assert.Equal(t, sum(), sum())
}

func TestPopulateNullableAndTypedColumns(t *testing.T) {
	eng := newSeedEngine(t)

	cfg := Config{
		Table: "mixed",
		Rows:  200,
		Seed:  3,
		Columns: []Column{
			{Name: "id", Type: TypeInteger, Dist: DistSequential},
			{Name: "tag", Type: TypeUUID},
			{Name: "flag", Type: TypeBoolean},
			{Name: "seen", Type: TypeTimestamp},
			{Name: "note", Type: TypeText, Nullable: true},
		},
	}
	var out bytes.Buffer
	n, err := Populate(eng, cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, 200, n)

	rs, err := eng.Query("SELECT COUNT(*) FROM mixed WHERE note IS NULL")
	require.NoError(t, err)
	nulls := rs.Rows[0][0].Int
	assert.Greater(t, nulls, int64(0), "nullable column should produce some NULLs")
	assert.Less(t, nulls, int64(200))

	rs, err = eng.Query("SELECT tag FROM mixed LIMIT 1")
	require.NoError(t, err)
	assert.Len(t, rs.Rows[0][0].Text, 36)
}

func TestPopulateAppendsToExistingTable(t *testing.T) {
	eng := newSeedEngine(t)

	cfg := DefaultConfig("twice", 30)
	cfg.Seed = 1
	var out bytes.Buffer
	_, err := Populate(eng, cfg, &out)
	require.NoError(t, err)
	_, err = Populate(eng, cfg, &out)
	require.NoError(t, err)

	rs, err := eng.Query("SELECT COUNT(*) FROM twice")
	require.NoError(t, err)
	assert.Equal(t, int64(60), rs.Rows[0][0].Int)
}

func TestPopulateProgressOutput(t *testing.T) {
	eng := newSeedEngine(t)

	cfg := DefaultConfig("p", 20)
	cfg.Seed = 1
	cfg.BatchSize = 10
	var out bytes.Buffer
	_, err := Populate(eng, cfg, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Progress: 10/20 rows (50.0%)")
	assert.Contains(t, out.String(), "Progress: 20/20 rows (100.0%)")
}

func TestPopulateRejectsEmptyConfig(t *testing.T) {
	eng := newSeedEngine(t)
	var out bytes.Buffer
	_, err := Populate(eng, Config{}, &out)
	assert.Error(t, err)
}
