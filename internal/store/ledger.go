package store

import (
	"context"
	"database/sql"
)

// ReplaceLedger atomically replaces the whole id ledger with ids, assigning
// rank = position + 1, and starts a new epoch.
// Thread-safe: acquires write lock.
func (s *Store) ReplaceLedger(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "replace ledger", func(tx *sql.Tx) error {
		return replaceLedgerTx(ctx, tx, ids)
	})
}

// replaceLedgerTx clears the ledger, bumps the epoch and inserts ids.
func replaceLedgerTx(ctx context.Context, tx *sql.Tx, ids []int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM top_story_ids"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE ledger_epoch SET epoch = epoch + 1 WHERE id = 1"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO top_story_ids (rank, id) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, int64(i+1), id); err != nil {
			return err
		}
	}
	return nil
}

// LedgerPage returns up to limit entries with rank strictly greater than
// afterRank, in rank order. afterRank 0 yields the first page.
// Thread-safe: acquires read lock.
func (s *Store) LedgerPage(ctx context.Context, afterRank int64, limit int) ([]LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.queryLedger(ctx, `
		SELECT rank, id FROM top_story_ids
		WHERE rank > ?
		ORDER BY rank
		LIMIT ?
	`, afterRank, limit)
	return entries, wrap("ledger page", err)
}

// Ledger returns every entry of the current epoch in rank order.
// Thread-safe: acquires read lock.
func (s *Store) Ledger(ctx context.Context) ([]LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.queryLedger(ctx, "SELECT rank, id FROM top_story_ids ORDER BY rank")
	return entries, wrap("ledger", err)
}

// Epoch returns the number of ledger replacements so far.
// Thread-safe: acquires read lock.
func (s *Store) Epoch(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	epoch, err := currentEpoch(ctx, s.db)
	return epoch, wrap("epoch", err)
}

// queryLedger scans (rank, id) rows.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryLedger(ctx context.Context, query string, args ...any) ([]LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.Rank, &e.ID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
