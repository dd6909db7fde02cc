package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wispdb/wisp/shell"
)

func newShellCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start a pass-through system shell with database context",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabase(dbPath); err != nil {
				return err
			}
			history := ""
			if cfg.REPL.HistoryFile != "" {
				history = filepath.Join(filepath.Dir(cfg.REPL.HistoryFile), "shell_history")
			}
			return shell.New(dbPath, os.Stdout).Run(history)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Database file")
	cmd.MarkFlagRequired("db")
	return cmd
}
