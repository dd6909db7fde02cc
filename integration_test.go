package wisp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wispdb/wisp/session"
)

// runWithBothDatabases runs a test against an in-memory database and a
// file-backed one.
func runWithBothDatabases(t *testing.T, testFunc func(t *testing.T, in *Instance)) {
	t.Run("Memory", func(t *testing.T) {
		in, err := Open(":memory:", Options{
			BookmarksFile: filepath.Join(t.TempDir(), "bookmarks.json"),
		})
		if err != nil {
			t.Fatalf("Failed to open in-memory database: %v", err)
		}
		defer in.Close()
		testFunc(t, in)
	})

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		in, err := Open(filepath.Join(dir, "test.db"), Options{})
		if err != nil {
			t.Fatalf("Failed to open file database: %v", err)
		}
		defer in.Close()
		testFunc(t, in)
	})
}

// TestIntegrationWorkflow drives a complete session: DDL, DML,
// transactions, bookmarks, and CSV round-trips through the dispatcher.
func TestIntegrationWorkflow(t *testing.T) {
	runWithBothDatabases(t, func(t *testing.T, in *Instance) {
		var out bytes.Buffer
		sess := in.NewSession(session.Options{RowLimit: 1000, Out: &out})

		dispatch := func(lines ...string) {
			t.Helper()
			for _, line := range lines {
				if sess.Dispatch(line) {
					t.Fatalf("Session quit unexpectedly on %q", line)
				}
			}
		}

		// Schema and data
		dispatch(
			"CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT, department TEXT, salary INTEGER);",
			"INSERT INTO employees (name, department, salary) VALUES ('Alice', 'Engineering', 95000);",
			"INSERT INTO employees (name, department, salary) VALUES ('Bob', 'Sales', 60000);",
		)

		// Transaction that is rolled back leaves no trace
		dispatch(
			".begin",
			"INSERT INTO employees (name, department, salary) VALUES ('Eve', 'Intern', 1);",
			".rollback",
		)
		if sess.TxStatus() != session.TxNone {
			t.Errorf("Expected no active transaction, got %v", sess.TxStatus())
		}

		out.Reset()
		dispatch("SELECT name FROM employees ORDER BY name;")
		if !strings.Contains(out.String(), "2 row(s) returned") {
			t.Errorf("Expected 2 rows after rollback, got output:\n%s", out.String())
		}
		if strings.Contains(out.String(), "Eve") {
			t.Error("Rolled back insert leaked into the table")
		}

		// Bookmark the query and run it by name
		dispatch(".bookmark save everyone")
		out.Reset()
		dispatch(".bookmark run everyone")
		if !strings.Contains(out.String(), "Alice") || !strings.Contains(out.String(), "Bob") {
			t.Errorf("Bookmark run missing expected rows:\n%s", out.String())
		}

		// Export the last SELECT, wipe the table, import it back
		dir := t.TempDir()
		csvPath := filepath.Join(dir, "employees.csv")
		out.Reset()
		dispatch(".export " + csvPath)
		if !strings.Contains(out.String(), "Exported 2 row(s)") {
			t.Fatalf("Export failed:\n%s", out.String())
		}

		data, err := os.ReadFile(csvPath)
		if err != nil {
			t.Fatalf("Failed to read exported file: %v", err)
		}
		if !strings.HasPrefix(string(data), "name\n") {
			t.Errorf("Unexpected export header: %q", string(data))
		}

		dispatch("CREATE TABLE names (name TEXT);")
		out.Reset()
		dispatch(".import " + csvPath + " names")
		if !strings.Contains(out.String(), "Imported 2 row(s) into names, 0 skipped") {
			t.Errorf("Import failed:\n%s", out.String())
		}

		// Committed transactions persist
		dispatch(
			".begin",
			"UPDATE employees SET salary = salary + 1000 WHERE name = 'Alice';",
			".commit",
		)
		out.Reset()
		dispatch("SELECT salary FROM employees WHERE name = 'Alice';")
		if !strings.Contains(out.String(), "96000") {
			t.Errorf("Committed update not visible:\n%s", out.String())
		}
	})
}

// TestIntegrationStatsAndSchema exercises the inspection commands end to end.
func TestIntegrationStatsAndSchema(t *testing.T) {
	dir := t.TempDir()
	in, err := Open(filepath.Join(dir, "stats.db"), Options{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer in.Close()

	var out bytes.Buffer
	sess := in.NewSession(session.Options{Out: &out})
	sess.Dispatch("CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT NOT NULL);")
	sess.Dispatch("INSERT INTO t (v) VALUES ('x'), ('y');")

	out.Reset()
	sess.Dispatch(".stats")
	got := out.String()
	for _, want := range []string{"Database Information:", "SQLite Version:", "t: 2 rows"} {
		if !strings.Contains(got, want) {
			t.Errorf("Stats output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	sess.Dispatch(".schema t")
	got = out.String()
	if !strings.Contains(got, "Schema for table t") || !strings.Contains(got, "INTEGER") {
		t.Errorf("Unexpected schema output:\n%s", got)
	}
}

// TestOpenDefaultBookmarksPath verifies the bookmarks file lands next to
// the database when no explicit path is given.
func TestOpenDefaultBookmarksPath(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "app.db")
	in, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer in.Close()

	if err := in.Bookmarks().Save("q", "SELECT 1;", ""); err != nil {
		t.Fatalf("Failed to save bookmark: %v", err)
	}
	if _, err := os.Stat(dbPath + ".bookmarks.json"); err != nil {
		t.Errorf("Expected bookmarks file next to database: %v", err)
	}
}
