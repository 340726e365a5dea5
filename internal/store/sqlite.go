package store

import (
	"context"
	"database/sql"
	"time"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// wrap tags a database failure with the operation that hit it.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// withTx runs fn inside a transaction and commits if fn succeeds.
// Caller must hold s.mu for writing.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return wrap(op, err)
	}
	if err := tx.Commit(); err != nil {
		return wrap(op, err)
	}
	return nil
}

// currentEpoch reads the ledger epoch through q.
func currentEpoch(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}) (int64, error) {
	var epoch int64
	err := q.QueryRowContext(ctx, "SELECT epoch FROM ledger_epoch WHERE id = 1").Scan(&epoch)
	return epoch, err
}

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// unixToTime converts stored unix seconds back to a time.
func unixToTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
