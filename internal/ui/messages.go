// Package ui provides the Bubble Tea TUI for hnreader.
package ui

import (
	"github.com/abelbrown/hnreader/internal/paging"
	"github.com/abelbrown/hnreader/internal/store"
)

// pageLoaded is sent when a load issued by a List finishes. Rows is the
// backed sequence read after the load; stale means it could not be read.
type pageLoaded[T any] struct {
	list   int
	kind   paging.LoadKind
	result paging.Result
	rows   []T
	stale  bool
}

// CommentsOpened is sent when the comment screen for a story is ready.
type CommentsOpened struct {
	Story  store.StoryRecord
	Source Source[store.CommentRecord]
	Err    error
}
