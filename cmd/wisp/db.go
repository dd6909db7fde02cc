package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wispdb/wisp/engine"
)

func newInitCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new database file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := name
			if !strings.HasSuffix(path, ".db") {
				path += ".db"
			}

			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Database '%s' already exists.\n", path)
				return verifyIntegrity(path)
			}

			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create directory %s: %w", dir, err)
				}
			}

			eng, err := engine.Open(path)
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.IntegrityCheck(); err != nil {
				return err
			}
			fmt.Printf("Successfully created database: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Database name (\".db\" is appended if missing)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func verifyIntegrity(path string) error {
	eng, err := engine.Open(path)
	if err != nil {
		return err
	}
	defer eng.Close()
	return eng.IntegrityCheck()
}

func newCreateTableCmd() *cobra.Command {
	var dbPath, name, columns string

	cmd := &cobra.Command{
		Use:   "create-table",
		Short: "Create a table in an existing database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabase(dbPath); err != nil {
				return err
			}

			eng, err := engine.Open(dbPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			tables, err := eng.Tables()
			if err != nil {
				return err
			}
			for _, t := range tables {
				if t == name {
					fmt.Printf("Table '%s' already exists in database: %s\n", name, dbPath)
					return nil
				}
			}

			create := fmt.Sprintf("CREATE TABLE %s (%s)", engine.QuoteIdent(name), columns)
			if _, err := eng.Execute(create); err != nil {
				return fmt.Errorf("create table %s: %w", name, err)
			}
			fmt.Printf("Successfully created table '%s' in database: %s\n", name, dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Database file")
	cmd.Flags().StringVar(&name, "name", "", "Table name")
	cmd.Flags().StringVar(&columns, "columns", "", `Column definitions, e.g. "id INTEGER PRIMARY KEY, name TEXT"`)
	cmd.MarkFlagRequired("db")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("columns")
	return cmd
}

func newListTablesCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "list-tables",
		Short: "List the tables in a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabase(dbPath); err != nil {
				return err
			}

			eng, err := engine.Open(dbPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			tables, err := eng.Tables()
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				fmt.Println("No tables found.")
				return nil
			}
			for _, t := range tables {
				fmt.Println(t)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Database file")
	cmd.MarkFlagRequired("db")
	return cmd
}

func requireDatabase(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("database '%s' does not exist; create it with 'wisp init --name %s'",
			path, strings.TrimSuffix(path, ".db"))
	}
	if info.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a database file", path)
	}
	return nil
}
