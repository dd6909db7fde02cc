package session

import (
	"errors"
	"strings"

	"github.com/wispdb/wisp/engine"
)

// TxStatus is the session's view of the connection's transaction state.
type TxStatus int

const (
	TxNone TxStatus = iota
	TxActive
)

func (s TxStatus) String() string {
	if s == TxActive {
		return "active"
	}
	return "none"
}

var (
	// ErrTxActive reports a begin while a transaction is already open.
	ErrTxActive = errors.New("transaction already in progress")
	// ErrTxNone reports a commit or rollback with nothing to finish.
	ErrTxNone = errors.New("no transaction in progress")
)

// TxTracker enforces begin/commit/rollback ordering for one session.
// It changes state only after the engine accepts the statement, so a
// failed BEGIN leaves the status untouched.
type TxTracker struct {
	status TxStatus
}

// Status returns the current transaction status.
func (t *TxTracker) Status() TxStatus { return t.status }

// Active reports whether a transaction is open.
func (t *TxTracker) Active() bool { return t.status == TxActive }

// Begin opens a transaction. Nested transactions are refused.
func (t *TxTracker) Begin(eng *engine.Engine) error {
	if t.status == TxActive {
		return ErrTxActive
	}
	if err := eng.Begin(); err != nil {
		return err
	}
	t.status = TxActive
	return nil
}

// Commit finishes the open transaction, keeping its writes.
func (t *TxTracker) Commit(eng *engine.Engine) error {
	if t.status == TxNone {
		return ErrTxNone
	}
	if err := eng.Commit(); err != nil {
		return err
	}
	t.status = TxNone
	return nil
}

// Rollback finishes the open transaction, discarding its writes.
func (t *TxTracker) Rollback(eng *engine.Engine) error {
	if t.status == TxNone {
		return ErrTxNone
	}
	if err := eng.Rollback(); err != nil {
		return err
	}
	t.status = TxNone
	return nil
}

// txStatement recognizes bare transaction-control SQL so the tracker
// can intercept it before it reaches the engine unsupervised.
type txStatement int

const (
	txNotControl txStatement = iota
	txBegin
	txCommit
	txRollback
)

func classifyTxStatement(sql string) txStatement {
	norm := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";")))
	switch norm {
	case "begin", "begin transaction":
		return txBegin
	case "commit", "commit transaction", "end", "end transaction":
		return txCommit
	case "rollback", "rollback transaction":
		return txRollback
	default:
		return txNotControl
	}
}
