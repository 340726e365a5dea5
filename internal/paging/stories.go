package paging

import (
	"context"
	"errors"
	"sync"

	"github.com/abelbrown/hnreader/internal/fetch"
	"github.com/abelbrown/hnreader/internal/store"
)

// StoryStore is the slice of the store the story mediator needs.
type StoryStore interface {
	RefreshStories(ctx context.Context, ids []int64, firstPage []store.HydratedStory) error
	LedgerPage(ctx context.Context, afterRank int64, limit int) ([]store.LedgerEntry, error)
	LastStoryByRank(ctx context.Context) (store.StoryRecord, error)
	UpsertStories(ctx context.Context, stories []store.HydratedStory) error
	StoryCount(ctx context.Context) (int, error)
	Stories(ctx context.Context, offset, limit int) ([]store.StoryRecord, error)
}

// StoryMediator pages the top story list.
// Thread-safety: loads are serialized by an internal mutex.
type StoryMediator struct {
	gateway Gateway
	store   StoryStore
	opts    Options
	mu      sync.Mutex
}

// NewStoryMediator creates a StoryMediator over s fed by g.
func NewStoryMediator(g Gateway, s StoryStore, opts Options) *StoryMediator {
	return &StoryMediator{
		gateway: g,
		store:   s,
		opts:    opts.withDefaults(),
	}
}

// Load performs one load of the given kind.
//
// Refresh pulls the full top-id list, hydrates its first page and commits
// the new ledger together with that page. Append extends from the highest
// rank in the store. Prepend always reports end of data.
func (m *StoryMediator) Load(ctx context.Context, kind LoadKind) Result {
	if kind == Prepend {
		return endOfData()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return instrument(ctx, m.opts.Recorder, "stories", kind, func(ctx context.Context) (Result, int) {
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

func (m *StoryMediator) refresh(ctx context.Context) (Result, int) {
	ids, err := m.gateway.TopStoryIDs(ctx)
	if err != nil {
		return failed(err), 0
	}

	page := ledgerEntries(ids, m.opts.PageSize)
	hydrated, err := m.hydrate(ctx, page)
	if err != nil {
		return failed(err), 0
	}

	if err := m.store.RefreshStories(ctx, ids, hydrated); err != nil {
		return failed(err), 0
	}
	if len(ids) == 0 {
		return endOfData(), 0
	}
	return more(), len(hydrated)
}

func (m *StoryMediator) append(ctx context.Context) (Result, int) {
	last, err := m.store.LastStoryByRank(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return endOfData(), 0
	}
	if err != nil {
		return failed(err), 0
	}

	page, err := m.store.LedgerPage(ctx, last.Rank, m.opts.PageSize)
	if err != nil {
		return failed(err), 0
	}
	if len(page) == 0 {
		return endOfData(), 0
	}

	hydrated, err := m.hydrate(ctx, page)
	if err != nil {
		return failed(err), 0
	}
	if err := m.store.UpsertStories(ctx, hydrated); err != nil {
		return failed(err), 0
	}
	return more(), len(hydrated)
}

func (m *StoryMediator) hydrate(ctx context.Context, page []store.LedgerEntry) ([]store.HydratedStory, error) {
	return hydrate(ctx, m.opts.MaxConcurrent, len(page), func(ctx context.Context, i int) (store.HydratedStory, error) {
		st, err := m.gateway.Story(ctx, page[i].ID)
		if err != nil {
			return store.HydratedStory{}, err
		}
		return storyRecord(page[i].Rank, st), nil
	})
}

// Sequence returns the live story sequence of the current epoch, by rank.
func (m *StoryMediator) Sequence() Sequence[store.StoryRecord] {
	return storySequence{m.store}
}

type storySequence struct {
	store StoryStore
}

func (s storySequence) Count(ctx context.Context) (int, error) {
	return s.store.StoryCount(ctx)
}

func (s storySequence) Window(ctx context.Context, offset, limit int) ([]store.StoryRecord, error) {
	return s.store.Stories(ctx, offset, limit)
}

// ledgerEntries returns the first limit ids as ledger entries, ranked from 1.
// This is exactly the first ledger page once ids is committed.
func ledgerEntries(ids []int64, limit int) []store.LedgerEntry {
	n := min(limit, len(ids))
	entries := make([]store.LedgerEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = store.LedgerEntry{Rank: int64(i + 1), ID: ids[i]}
	}
	return entries
}

var (
	_ Gateway    = (*fetch.Client)(nil)
	_ StoryStore = (*store.Store)(nil)
)
