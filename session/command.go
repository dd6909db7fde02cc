package session

import (
	"fmt"
	"strings"
)

// cmdKind is the closed set of meta-commands the dispatcher knows.
// Anything else classifies as cmdUnknown, which is reported and ignored.
type cmdKind int

const (
	cmdUnknown cmdKind = iota
	cmdTables
	cmdSchema
	cmdStats
	cmdFormat
	cmdLimit
	cmdBegin
	cmdCommit
	cmdRollback
	cmdStatus
	cmdBookmark
	cmdImport
	cmdExport
	cmdShell
	cmdClear
	cmdHistory
	cmdHelp
	cmdExit
)

// command is one parsed meta-command: its kind, the name as typed, and
// its arguments with quoting already resolved.
type command struct {
	kind cmdKind
	name string
	args []string
}

var commandNames = map[string]cmdKind{
	".tables":   cmdTables,
	".schema":   cmdSchema,
	".stats":    cmdStats,
	".format":   cmdFormat,
	".limit":    cmdLimit,
	".begin":    cmdBegin,
	".commit":   cmdCommit,
	".rollback": cmdRollback,
	".status":   cmdStatus,
	".bookmark": cmdBookmark,
	".import":   cmdImport,
	".export":   cmdExport,
	".shell":    cmdShell,
	".clear":    cmdClear,
	".cls":      cmdClear,
	".history":  cmdHistory,
	".help":     cmdHelp,
	".h":        cmdHelp,
	".exit":     cmdExit,
	".quit":     cmdExit,
	".q":        cmdExit,
}

// classify parses one meta-command line. The name is matched
// case-insensitively; arguments keep their case.
func classify(line string) (command, error) {
	fields, err := splitArgs(line)
	if err != nil {
		return command{}, err
	}
	if len(fields) == 0 {
		return command{kind: cmdUnknown}, nil
	}

	name := strings.ToLower(fields[0])
	cmd := command{kind: commandNames[name], name: fields[0], args: fields[1:]}
	return cmd, nil
}

// splitArgs splits a meta-command line on spaces. A double-quoted
// argument may contain spaces; a doubled quote inside it is a literal
// quote character.
func splitArgs(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	started := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote:
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					cur.WriteByte('"')
					i++
					continue
				}
				inQuote = false
				continue
			}
			cur.WriteByte(c)
		case c == '"':
			inQuote = true
			started = true
		case c == ' ' || c == '\t':
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteByte(c)
			started = true
		}
	}

	if inQuote {
		return nil, fmt.Errorf("unterminated quote in command: %s", line)
	}
	if started {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
