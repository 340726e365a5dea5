package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Error wraps a failure of the local database. The cache cannot recover
// from one within a session, so callers surface it instead of retrying.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// LedgerEntry pairs a dense 1-based rank with a remote story id.
type LedgerEntry struct {
	Rank int64
	ID   int64
}

// StoryRecord is a hydrated story. Rank is the ledger rank at fetch time.
type StoryRecord struct {
	ID           int64
	Rank         int64
	Title        string
	Author       string
	Posted       time.Time
	Text         string
	URL          string
	Score        int
	CommentCount int
	Deleted      bool
	Dead         bool
	PollID       *int64 // nil unless the story is a poll option
}

// HydratedStory is a story ready for upsert together with the direct child
// comment ids listed by the remote record. A nil CommentIDs leaves any
// previously captured refs untouched.
type HydratedStory struct {
	Story      StoryRecord
	CommentIDs []int64
}

// CommentRecord is a hydrated comment. Seq is assigned on insert and orders
// the comment sequence of one story.
type CommentRecord struct {
	Seq      int64
	StoryID  int64
	ID       int64
	ParentID int64
	Author   string
	Text     string
	Deleted  bool
	Posted   time.Time
}

// CommentIDRef associates a story with one of its direct child comment ids.
type CommentIDRef struct {
	StoryID  int64
	Position int
	ID       int64
}

// StoryWithComments is a story plus its captured child comment refs in
// remote list order.
type StoryWithComments struct {
	Story    StoryRecord
	Comments []CommentIDRef
}

// CommentIDs returns the captured child ids in list order.
func (s StoryWithComments) CommentIDs() []int64 {
	ids := make([]int64, len(s.Comments))
	for i, ref := range s.Comments {
		ids[i] = ref.ID
	}
	return ids
}
