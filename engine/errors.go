package engine

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrorKind is a coarse classification of engine failures. The original
// SQLite message is always preserved verbatim underneath.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindConstraint
	KindSyntax
	KindLocked
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindConstraint:
		return "constraint violation"
	case KindSyntax:
		return "syntax error"
	case KindLocked:
		return "database locked"
	case KindIO:
		return "I/O error"
	default:
		return "engine error"
	}
}

// Error tags an engine failure with its kind without rewriting the
// engine's own message.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the classification of err, or KindOther when err did
// not come out of this package.
func KindOf(err error) ErrorKind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindOther
}

// wrap classifies a raw driver error. go-sqlite3 reports its result
// codes on a value-typed sqlite3.Error.
func wrap(err error) error {
	if err == nil {
		return nil
	}

	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.Code {
		case sqlite3.ErrConstraint:
			return &Error{Kind: KindConstraint, Err: err}
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return &Error{Kind: KindLocked, Err: err}
		case sqlite3.ErrIoErr, sqlite3.ErrFull, sqlite3.ErrCantOpen, sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
			return &Error{Kind: KindIO, Err: err}
		}
	}

	if strings.Contains(err.Error(), "syntax error") {
		return &Error{Kind: KindSyntax, Err: err}
	}

	return &Error{Kind: KindOther, Err: err}
}
