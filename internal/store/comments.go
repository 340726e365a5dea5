package store

import (
	"context"
	"database/sql"
)

// ReplaceComments drops every cached comment of storyID and inserts comments
// in their place, in order, in one transaction.
// Thread-safe: acquires write lock.
func (s *Store) ReplaceComments(ctx context.Context, storyID int64, comments []CommentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "replace comments", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE story_id = ?", storyID); err != nil {
			return err
		}
		return insertComments(ctx, tx, storyID, comments)
	})
}

// AppendComments adds comments after the existing sequence of storyID.
// Thread-safe: acquires write lock.
func (s *Store) AppendComments(ctx context.Context, storyID int64, comments []CommentRecord) error {
	if len(comments) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "append comments", func(tx *sql.Tx) error {
		return insertComments(ctx, tx, storyID, comments)
	})
}

// ClearComments removes every cached comment of storyID.
// Thread-safe: acquires write lock.
func (s *Store) ClearComments(ctx context.Context, storyID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM comments WHERE story_id = ?", storyID)
	return wrap("clear comments", err)
}

// CommentCount returns the number of cached comments of storyID.
// Thread-safe: acquires read lock.
func (s *Store) CommentCount(ctx context.Context, storyID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments WHERE story_id = ?", storyID).Scan(&count)
	return count, wrap("comment count", err)
}

// Comments returns up to limit cached comments of storyID in insertion
// order, skipping the first offset.
// Thread-safe: acquires read lock.
func (s *Store) Comments(ctx context.Context, storyID int64, offset, limit int) ([]CommentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, story_id, id, parent_id, author, text, deleted, posted_at
		FROM comments
		WHERE story_id = ?
		ORDER BY seq
		LIMIT ? OFFSET ?
	`, storyID, limit, offset)
	if err != nil {
		return nil, wrap("comments", err)
	}
	defer rows.Close()

	var comments []CommentRecord
	for rows.Next() {
		var (
			c          CommentRecord
			deletedInt int
			posted     int64
		)
		if err := rows.Scan(&c.Seq, &c.StoryID, &c.ID, &c.ParentID, &c.Author, &c.Text, &deletedInt, &posted); err != nil {
			return nil, wrap("comments", err)
		}
		c.Deleted = deletedInt != 0
		c.Posted = unixToTime(posted)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("comments", err)
	}
	return comments, nil
}

// insertComments appends rows for storyID in slice order.
// Caller must hold s.mu for writing.
func insertComments(ctx context.Context, tx *sql.Tx, storyID int64, comments []CommentRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comments (story_id, id, parent_id, author, text, deleted, posted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range comments {
		if _, err := stmt.ExecContext(ctx,
			storyID,
			c.ID,
			c.ParentID,
			c.Author,
			c.Text,
			boolToInt(c.Deleted),
			c.Posted.Unix(),
		); err != nil {
			return err
		}
	}
	return nil
}
