package paging

import (
	"context"
	"sync"

	"github.com/abelbrown/hnreader/internal/store"
)

// CommentStore is the slice of the store the comment mediator needs.
type CommentStore interface {
	ReplaceComments(ctx context.Context, storyID int64, comments []store.CommentRecord) error
	AppendComments(ctx context.Context, storyID int64, comments []store.CommentRecord) error
	ClearComments(ctx context.Context, storyID int64) error
	CommentCount(ctx context.Context, storyID int64) (int, error)
	Comments(ctx context.Context, storyID int64, offset, limit int) ([]store.CommentRecord, error)
}

var _ CommentStore = (*store.Store)(nil)

// StoryLocks hands out one mutex per story id. Comment mediators built with
// the same StoryLocks serialize their loads per story, so a story's comment
// rows have a single writer however many mediators page them.
type StoryLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewStoryLocks creates an empty StoryLocks.
func NewStoryLocks() *StoryLocks {
	return &StoryLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *StoryLocks) forStory(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[id] = mu
	}
	return mu
}

// CommentMediator pages the direct comments of one story over the child id
// list captured when the story was fetched. The list is fixed for the
// mediator's lifetime.
// Thread-safety: loads hold the story's lock from Options.Locks, or a
// private mutex when Locks is nil.
type CommentMediator struct {
	gateway Gateway
	store   CommentStore
	storyID int64
	ids     []int64 // IMMUTABLE: copied at construction
	opts    Options
	mu      *sync.Mutex
}

// NewCommentMediator creates a CommentMediator for story.
func NewCommentMediator(g Gateway, s CommentStore, story store.StoryWithComments, opts Options) *CommentMediator {
	mu := &sync.Mutex{}
	if opts.Locks != nil {
		mu = opts.Locks.forStory(story.Story.ID)
	}
	return &CommentMediator{
		gateway: g,
		store:   s,
		storyID: story.Story.ID,
		ids:     story.CommentIDs(),
		opts:    opts.withDefaults(),
		mu:      mu,
	}
}

// StoryID returns the story whose comments this mediator pages.
func (m *CommentMediator) StoryID() int64 {
	return m.storyID
}

// Total returns the number of child ids in the fixed list.
func (m *CommentMediator) Total() int {
	return len(m.ids)
}

// Load performs one load of the given kind.
//
// Refresh replaces this story's comment rows with the first page of the
// fixed list. Append continues from the current row count. Prepend always
// reports end of data.
func (m *CommentMediator) Load(ctx context.Context, kind LoadKind) Result {
	if kind == Prepend {
		return endOfData()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return instrument(ctx, m.opts.Recorder, "comments", kind, func(ctx context.Context) (Result, int) {
		switch kind {
		case Refresh:
			return m.refresh(ctx)
		case Append:
			return m.append(ctx)
		default:
			return endOfData(), 0
		}
	})
}

func (m *CommentMediator) refresh(ctx context.Context) (Result, int) {
	if len(m.ids) == 0 {
		if err := m.store.ClearComments(ctx, m.storyID); err != nil {
			return failed(err), 0
		}
		return endOfData(), 0
	}

	page := m.ids[:min(m.opts.PageSize, len(m.ids))]
	comments, err := m.hydrate(ctx, page)
	if err != nil {
		return failed(err), 0
	}
	if err := m.store.ReplaceComments(ctx, m.storyID, comments); err != nil {
		return failed(err), 0
	}
	return more(), len(comments)
}

func (m *CommentMediator) append(ctx context.Context) (Result, int) {
	n, err := m.store.CommentCount(ctx, m.storyID)
	if err != nil {
		return failed(err), 0
	}
	if n >= len(m.ids) {
		return endOfData(), 0
	}

	page := m.ids[n:min(n+m.opts.PageSize, len(m.ids))]
	comments, err := m.hydrate(ctx, page)
	if err != nil {
		return failed(err), 0
	}
	if err := m.store.AppendComments(ctx, m.storyID, comments); err != nil {
		return failed(err), 0
	}
	return more(), len(comments)
}

func (m *CommentMediator) hydrate(ctx context.Context, ids []int64) ([]store.CommentRecord, error) {
	return hydrate(ctx, m.opts.MaxConcurrent, len(ids), func(ctx context.Context, i int) (store.CommentRecord, error) {
		c, err := m.gateway.Comment(ctx, ids[i])
		if err != nil {
			return store.CommentRecord{}, err
		}
		return commentRecord(m.storyID, c), nil
	})
}

// Sequence returns the live comment sequence of this story, in fetch order.
func (m *CommentMediator) Sequence() Sequence[store.CommentRecord] {
	return commentSequence{store: m.store, storyID: m.storyID}
}

type commentSequence struct {
	store   CommentStore
	storyID int64
}

func (s commentSequence) Count(ctx context.Context) (int, error) {
	return s.store.CommentCount(ctx, s.storyID)
}

func (s commentSequence) Window(ctx context.Context, offset, limit int) ([]store.CommentRecord, error) {
	return s.store.Comments(ctx, s.storyID, offset, limit)
}
