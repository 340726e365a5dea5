package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/abelbrown/hnreader/internal/logging"
)

const storyColumns = `id, rank, title, author, posted_at, text, url, score,
	comment_count, deleted, dead, poll_id`

// currentEpochClause restricts a story query to the live ledger epoch.
const currentEpochClause = `epoch = (SELECT epoch FROM ledger_epoch WHERE id = 1)`

// UpsertStories writes a page of hydrated stories in one transaction,
// stamping each with the current ledger epoch. Stories that carry child ids
// have their comment refs replaced in the same transaction; a failed ref
// write is logged and skipped rather than failing the page.
// Thread-safe: acquires write lock.
func (s *Store) UpsertStories(ctx context.Context, stories []HydratedStory) error {
	if len(stories) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "upsert stories", func(tx *sql.Tx) error {
		return upsertStoriesTx(ctx, tx, stories)
	})
}

// RefreshStories replaces the ledger with ids and upserts the first page of
// the new epoch in a single transaction. Readers see either the previous
// epoch in full or the new ledger together with its first page.
// Thread-safe: acquires write lock.
func (s *Store) RefreshStories(ctx context.Context, ids []int64, firstPage []HydratedStory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "refresh stories", func(tx *sql.Tx) error {
		if err := replaceLedgerTx(ctx, tx, ids); err != nil {
			return err
		}
		return upsertStoriesTx(ctx, tx, firstPage)
	})
}

func upsertStoriesTx(ctx context.Context, tx *sql.Tx, stories []HydratedStory) error {
	epoch, err := currentEpoch(ctx, tx)
	if err != nil {
		return err
	}

	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO stories (
			id, rank, epoch, title, author, posted_at, text, url, score,
			comment_count, deleted, dead, poll_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			rank = excluded.rank,
			epoch = excluded.epoch,
			title = excluded.title,
			author = excluded.author,
			posted_at = excluded.posted_at,
			text = excluded.text,
			url = excluded.url,
			score = excluded.score,
			comment_count = excluded.comment_count,
			deleted = excluded.deleted,
			dead = excluded.dead,
			poll_id = excluded.poll_id
	`)
	if err != nil {
		return err
	}
	defer upsert.Close()

	for _, h := range stories {
		st := h.Story
		var poll sql.NullInt64
		if st.PollID != nil {
			poll = sql.NullInt64{Int64: *st.PollID, Valid: true}
		}
		if _, err := upsert.ExecContext(ctx,
			st.ID,
			st.Rank,
			epoch,
			st.Title,
			st.Author,
			st.Posted.Unix(),
			st.Text,
			st.URL,
			st.Score,
			st.CommentCount,
			boolToInt(st.Deleted),
			boolToInt(st.Dead),
			poll,
		); err != nil {
			return err
		}

		if h.CommentIDs == nil {
			continue
		}
		if err := replaceCommentRefs(ctx, tx, st.ID, h.CommentIDs); err != nil {
			logging.Warn("Failed to save comment refs", "story_id", st.ID, "error", err)
		}
	}
	return nil
}

// replaceCommentRefs swaps the captured child ids of one story under a
// savepoint. On error the previous refs are restored and the enclosing
// transaction stays usable.
func replaceCommentRefs(ctx context.Context, tx *sql.Tx, storyID int64, ids []int64) error {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT comment_refs"); err != nil {
		return err
	}
	if err := writeCommentRefs(ctx, tx, storyID, ids); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT comment_refs"); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		if _, relErr := tx.ExecContext(ctx, "RELEASE SAVEPOINT comment_refs"); relErr != nil {
			return errors.Join(err, relErr)
		}
		return err
	}
	_, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT comment_refs")
	return err
}

func writeCommentRefs(ctx context.Context, tx *sql.Tx, storyID int64, ids []int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM comment_ids WHERE story_id = ?", storyID); err != nil {
		return err
	}
	for pos, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO comment_ids (story_id, position, id) VALUES (?, ?, ?)",
			storyID, pos, id,
		); err != nil {
			return err
		}
	}
	return nil
}

// LastStoryByRank returns the highest-ranked story of the current epoch.
// Returns ErrNotFound when the epoch has no stories yet.
// Thread-safe: acquires read lock.
func (s *Store) LastStoryByRank(ctx context.Context) (StoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+storyColumns+` FROM stories
		WHERE `+currentEpochClause+`
		ORDER BY rank DESC
		LIMIT 1
	`)
	st, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoryRecord{}, ErrNotFound
	}
	return st, wrap("last story by rank", err)
}

// Stories returns up to limit stories of the current epoch ordered by rank,
// skipping the first offset.
// Thread-safe: acquires read lock.
func (s *Store) Stories(ctx context.Context, offset, limit int) ([]StoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+storyColumns+` FROM stories
		WHERE `+currentEpochClause+`
		ORDER BY rank
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, wrap("stories", err)
	}
	defer rows.Close()

	var stories []StoryRecord
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, wrap("stories", err)
		}
		stories = append(stories, st)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("stories", err)
	}
	return stories, nil
}

// StoryCount returns the number of stories in the current epoch.
// Thread-safe: acquires read lock.
func (s *Store) StoryCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stories WHERE "+currentEpochClause).Scan(&count)
	return count, wrap("story count", err)
}

// Story returns the story with the given id from any epoch.
// Thread-safe: acquires read lock.
func (s *Store) Story(ctx context.Context, id int64) (StoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+storyColumns+" FROM stories WHERE id = ?", id)
	st, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoryRecord{}, ErrNotFound
	}
	return st, wrap("story", err)
}

// StoryWithComments returns a story together with its captured child
// comment refs in list order.
// Thread-safe: acquires read lock.
func (s *Store) StoryWithComments(ctx context.Context, id int64) (StoryWithComments, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+storyColumns+" FROM stories WHERE id = ?", id)
	st, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoryWithComments{}, ErrNotFound
	}
	if err != nil {
		return StoryWithComments{}, wrap("story with comments", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT story_id, position, id FROM comment_ids
		WHERE story_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return StoryWithComments{}, wrap("story with comments", err)
	}
	defer rows.Close()

	result := StoryWithComments{Story: st}
	for rows.Next() {
		var ref CommentIDRef
		if err := rows.Scan(&ref.StoryID, &ref.Position, &ref.ID); err != nil {
			return StoryWithComments{}, wrap("story with comments", err)
		}
		result.Comments = append(result.Comments, ref)
	}
	if err := rows.Err(); err != nil {
		return StoryWithComments{}, wrap("story with comments", err)
	}
	return result, nil
}

// scanStory reads one row selected with storyColumns.
func scanStory(row scanner) (StoryRecord, error) {
	var (
		st                  StoryRecord
		posted              int64
		deletedInt, deadInt int
		poll                sql.NullInt64
	)
	err := row.Scan(
		&st.ID,
		&st.Rank,
		&st.Title,
		&st.Author,
		&posted,
		&st.Text,
		&st.URL,
		&st.Score,
		&st.CommentCount,
		&deletedInt,
		&deadInt,
		&poll,
	)
	if err != nil {
		return StoryRecord{}, err
	}
	st.Posted = unixToTime(posted)
	st.Deleted = deletedInt != 0
	st.Dead = deadInt != 0
	if poll.Valid {
		id := poll.Int64
		st.PollID = &id
	}
	return st, nil
}
