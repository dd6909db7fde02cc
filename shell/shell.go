// Package shell is a pass-through command loop that keeps the database
// context at hand: builtins for navigation plus execution of anything on
// PATH, without leaving the program.
package shell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
)

// Shell holds the state of one pass-through session.
type Shell struct {
	dbPath  string
	out     io.Writer
	history []string
}

// New builds a shell bound to the database at dbPath. Output goes to out.
func New(dbPath string, out io.Writer) *Shell {
	if out == nil {
		out = os.Stdout
	}
	return &Shell{dbPath: dbPath, out: out}
}

// Run reads and executes commands until exit or EOF. The working
// directory is restored when the loop ends. historyFile may be empty.
func (s *Shell) Run(historyFile string) error {
	origDir, _ := os.Getwd()
	defer func() {
		if origDir != "" {
			os.Chdir(origDir)
		}
	}()

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:      s.prompt(),
		HistoryFile: historyFile,
	})
	if err != nil {
		return fmt.Errorf("init shell input: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(s.out, "Type 'exit' to return, 'help' for available commands.")

	for {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Fprintln(s.out, "Use 'exit' to return")
			continue
		}
		if err != nil {
			return nil
		}
		if s.Exec(line) {
			return nil
		}
	}
}

// prompt shows the working directory with the home prefix collapsed.
func (s *Shell) prompt() string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "?"
	}
	if home, err := os.UserHomeDir(); err == nil {
		if cwd == home {
			cwd = "~"
		} else if rel, err := filepath.Rel(home, cwd); err == nil && !strings.HasPrefix(rel, "..") {
			cwd = "~/" + rel
		}
	}
	return fmt.Sprintf("[wisp-shell %s]$ ", cwd)
}

// Exec runs one line and reports whether the shell should end.
func (s *Shell) Exec(line string) (exit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	s.history = append(s.history, line)

	parts := strings.Fields(line)
	switch parts[0] {
	case "exit":
		return true
	case "help":
		s.printHelp()
	case ".dbinfo":
		fmt.Fprintf(s.out, "Connected to database: %s\n", s.dbPath)
	case "cd":
		s.chdir(parts[1:])
	case "pwd":
		if cwd, err := os.Getwd(); err == nil {
			fmt.Fprintln(s.out, cwd)
		}
	case "history":
		for i, entry := range s.history {
			fmt.Fprintf(s.out, "%d: %s\n", i+1, entry)
		}
	default:
		s.runExternal(parts)
	}
	return false
}

func (s *Shell) chdir(args []string) {
	home, _ := os.UserHomeDir()
	path := home
	if len(args) > 0 {
		path = args[0]
		if path == "~" {
			path = home
		} else if strings.HasPrefix(path, "~/") {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.Chdir(path); err != nil {
		fmt.Fprintf(s.out, "cd: %s: %v\n", path, err)
	}
}

func (s *Shell) runExternal(parts []string) {
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdout = s.out
	cmd.Stderr = s.out
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			fmt.Fprintf(s.out, "Command failed with exit code: %d\n", exitErr.ExitCode())
			return
		}
		fmt.Fprintf(s.out, "Command not found: %s\n", parts[0])
	}
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `Available commands:
  .dbinfo        Show the connected database path
  cd <dir>       Change directory (~ expands to home)
  pwd            Print working directory
  history        Show commands entered this session
  help           Show this help message
  exit           Leave the shell
Anything else runs as a system command.
`)
}
