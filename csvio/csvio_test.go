package csvio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wispdb/wisp/engine"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExportQuoting(t *testing.T) {
	rs := &engine.ResultSet{
		Columns: []string{"id", "note", "score"},
		Rows: [][]engine.Value{
			{
				{Kind: engine.Integer, Int: 1},
				{Kind: engine.Text, Text: "hello, world"},
				{Kind: engine.Null},
			},
			{
				{Kind: engine.Integer, Int: 2},
				{Kind: engine.Text, Text: `say "hi"`},
				{Kind: engine.Real, Real: 0.5},
			},
		},
	}

	var buf bytes.Buffer
	n, err := Export(&buf, rs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,note,score", lines[0])
	assert.Equal(t, `1,"hello, world",`, lines[1], "comma field quoted, NULL empty")
	assert.Equal(t, `2,"say ""hi""",0.5`, lines[2], "embedded quotes doubled")
}

func TestImportBasic(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Execute("CREATE TABLE people (id INTEGER, name TEXT, height REAL)")
	require.NoError(t, err)

	path := writeFile(t, "id,name,height\n1,Ada,1.63\n2,Grace,1.5\n")

	res, err := Import(eng, path, "people")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.Skipped)

	rs, err := eng.Query("SELECT id, name, height FROM people ORDER BY id")
	require.NoError(t, err)
	require.Equal(t, 2, rs.NumRows())
	assert.Equal(t, engine.Integer, rs.Rows[0][0].Kind, "numeric field stored as integer")
	assert.Equal(t, engine.Real, rs.Rows[0][2].Kind, "decimal field stored as real")
	assert.Equal(t, "Ada", rs.Rows[0][1].Text)
}

func TestImportSkipsShortRows(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Execute("CREATE TABLE t (a INTEGER, b TEXT, c TEXT)")
	require.NoError(t, err)

	path := writeFile(t, "a,b,c\n1,x,y\n2,short\n3,p,q\n")

	res, err := Import(eng, path, "t")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.RowErrors, 1)
	assert.Equal(t, 3, res.RowErrors[0].Line)

	// The accepted subset still committed.
	rs, err := eng.Query("SELECT COUNT(*) FROM t")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rs.Rows[0][0].Int)
}

func TestImportEmptyFieldCoercion(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Execute("CREATE TABLE t (n INTEGER, s TEXT)")
	require.NoError(t, err)

	// Empty field in a nullable integer column imports as NULL; in a
	// text column the empty string is a legal value, so text wins.
	path := writeFile(t, "n,s\n,hello\n7,\n")

	res, err := Import(eng, path, "t")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.Skipped)

	rs, err := eng.Query("SELECT n, s FROM t ORDER BY rowid")
	require.NoError(t, err)
	require.Equal(t, 2, rs.NumRows())
	assert.Equal(t, engine.Null, rs.Rows[0][0].Kind, "empty nullable integer imports as NULL")
	assert.Equal(t, engine.Text, rs.Rows[1][1].Kind)
	assert.Equal(t, "", rs.Rows[1][1].Text, "empty text column stays empty text")
}

func TestImportUnknownColumn(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Execute("CREATE TABLE t (a INTEGER)")
	require.NoError(t, err)

	path := writeFile(t, "a,mystery\n1,2\n")
	_, err = Import(eng, path, "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestImportMissingFile(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Execute("CREATE TABLE t (a INTEGER)")
	require.NoError(t, err)

	_, err = Import(eng, filepath.Join(t.TempDir(), "nope.csv"), "t")
	assert.Error(t, err)
}

func TestImportReleasesTransactionOnRowErrors(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Execute("CREATE TABLE t (a INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	// Duplicate keys force engine-level row errors mid-transaction.
	path := writeFile(t, "a\n1\n1\n2\n")
	res, err := Import(eng, path, "t")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)

	// No transaction may leak: a fresh BEGIN must succeed.
	require.NoError(t, eng.Begin())
	require.NoError(t, eng.Rollback())
}

func TestRoundTrip(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Execute("CREATE TABLE src (id INTEGER, note TEXT, score REAL)")
	require.NoError(t, err)
	_, err = eng.Execute(`INSERT INTO src VALUES (1, 'plain', 2.5), (2, 'a,b', NULL), (3, NULL, 0.25)`)
	require.NoError(t, err)

	rs, err := eng.Query("SELECT id, note, score FROM src ORDER BY id")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "round.csv")
	n, err := ExportFile(path, rs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"a,b"`, "comma-containing field is quoted in the file")

	_, err = eng.Execute("CREATE TABLE dst (id INTEGER, note TEXT, score REAL)")
	require.NoError(t, err)
	res, err := Import(eng, path, "dst")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)

	got, err := eng.Query("SELECT id, note, score FROM dst ORDER BY id")
	require.NoError(t, err)
	require.Equal(t, 3, got.NumRows())
	assert.Equal(t, int64(1), got.Rows[0][0].Int)
	assert.Equal(t, "a,b", got.Rows[1][1].Text)
	assert.Equal(t, engine.Null, got.Rows[1][2].Kind, "NULL real survives the round trip")
	assert.Equal(t, 0.25, got.Rows[2][2].Real)
}
