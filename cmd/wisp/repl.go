package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"

	"github.com/wispdb/wisp"
	"github.com/wispdb/wisp/session"
	"github.com/wispdb/wisp/shell"
)

const (
	promptColor = "\033[36m" // Cyan
	resetColor  = "\033[0m"
	boldColor   = "\033[1m"
)

func newReplCmd() *cobra.Command {
	var dbPath, command, format string
	var limit int

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabase(dbPath); err != nil {
				return err
			}

			instance, err := wisp.Open(dbPath, wisp.Options{
				BookmarksFile: cfg.REPL.BookmarksFile,
			})
			if err != nil {
				return err
			}
			defer instance.Close()

			if !cmd.Flags().Changed("format") {
				format = cfg.REPL.Format
			}
			parsed, err := session.ParseFormat(format)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.REPL.RowLimit
			}

			sess := instance.NewSession(session.Options{
				Format:   parsed,
				RowLimit: limit,
				Shell: func() error {
					return shell.New(dbPath, os.Stdout).Run("")
				},
			})
			defer sess.Close()

			if command != "" {
				return runBatch(sess, command)
			}
			if !stdinIsTerminal() {
				return runPiped(sess, os.Stdin)
			}
			return runInteractive(sess, dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Database file")
	cmd.Flags().StringVarP(&command, "command", "c", "", "Execute statements and exit instead of starting the loop")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json, csv)")
	cmd.Flags().IntVar(&limit, "limit", 1000, "Row limit for displayed results (0 = no limit)")
	cmd.MarkFlagRequired("db")
	return cmd
}

// runBatch feeds the --command string through the dispatcher. A trailing
// statement without its terminator is an error rather than a hang.
func runBatch(sess *session.Session, command string) error {
	if sess.Dispatch(command) {
		return nil
	}
	if sess.Pending() {
		sess.ResetPending()
		return errors.New("incomplete statement: missing terminating semicolon")
	}
	return nil
}

// runPiped executes stdin line by line, the way a shell here-doc would.
func runPiped(sess *session.Session, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if sess.Dispatch(scanner.Text()) {
			return nil
		}
	}
	if sess.Pending() {
		sess.ResetPending()
		return errors.New("incomplete statement: missing terminating semicolon")
	}
	return scanner.Err()
}

func runInteractive(sess *session.Session, dbPath string) error {
	printBanner(dbPath)

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:      sess.Prompt(),
		HistoryFile: cfg.REPL.HistoryFile,
	})
	if err != nil {
		return fmt.Errorf("init line editor: %w", err)
	}
	defer rl.Close()

	for {
		rl.SetPrompt(promptColor + sess.Prompt() + resetColor)
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if sess.Pending() {
				sess.ResetPending()
				fmt.Println("(statement discarded)")
			}
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("read input", "error", err)
			}
			fmt.Println()
			return nil
		}
		if sess.Dispatch(line) {
			return nil
		}
	}
}

func printBanner(dbPath string) {
	fmt.Println()
	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", boldColor, promptColor, resetColor)
	fmt.Printf("%s%s║             wisp %-7s              ║%s\n", boldColor, promptColor, "v"+Version, resetColor)
	fmt.Printf("%s%s║     Interactive SQLite REPL           ║%s\n", boldColor, promptColor, resetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", boldColor, promptColor, resetColor)
	fmt.Println()
	fmt.Printf("Connected to %s\n", dbPath)
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
