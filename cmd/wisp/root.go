package main

import (
	"github.com/spf13/cobra"

	"github.com/wispdb/wisp/config"
	"github.com/wispdb/wisp/logging"
)

// cfg is loaded once before any subcommand runs.
var cfg = &config.Config{}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wisp",
		Short:         "wisp: an interactive SQLite REPL",
		Long:          "wisp is an interactive SQL REPL over an embedded SQLite database,\nwith transaction tracking, persisted bookmarks, multi-format output,\nand CSV import/export.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			logging.Setup(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}

	root.AddCommand(newInitCmd())
	root.AddCommand(newCreateTableCmd())
	root.AddCommand(newListTablesCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newPopulateCmd())
	root.AddCommand(newShellCmd())
	return root
}
