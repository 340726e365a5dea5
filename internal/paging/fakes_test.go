package paging

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/hnreader/internal/fetch"
	"github.com/abelbrown/hnreader/internal/store"
)

// fakeGateway implements Gateway for testing.
type fakeGateway struct {
	mu       sync.Mutex
	topIDs   []int64
	topErr   error
	stories  map[int64]*fetch.Story
	comments map[int64]*fetch.Comment
	fail     map[int64]error

	// before runs inside Story/Comment before the item is returned.
	before func(id int64)

	topCalls     atomic.Int32
	storyCalls   atomic.Int32
	commentCalls atomic.Int32
	inFlight     atomic.Int32
	maxInFlight  atomic.Int32
}

func newFakeGateway(ids ...int64) *fakeGateway {
	g := &fakeGateway{
		stories:  make(map[int64]*fetch.Story),
		comments: make(map[int64]*fetch.Comment),
		fail:     make(map[int64]error),
	}
	g.setTop(ids...)
	return g
}

// setTop replaces the top list and makes every id fetchable as a story.
func (g *fakeGateway) setTop(ids ...int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.topIDs = ids
	for _, id := range ids {
		if _, ok := g.stories[id]; !ok {
			g.stories[id] = &fetch.Story{
				ID:    id,
				Type:  "story",
				By:    "author",
				Title: fmt.Sprintf("Story %d", id),
				Score: int(id),
				Time:  1700000000 + id,
			}
		}
	}
}

func (g *fakeGateway) addComments(storyID int64, ids ...int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if st, ok := g.stories[storyID]; ok {
		st.Kids = append([]int64(nil), ids...)
		st.Descendants = len(ids)
	}
	for _, id := range ids {
		g.comments[id] = &fetch.Comment{
			ID:     id,
			Type:   "comment",
			Parent: storyID,
			By:     "commenter",
			Text:   fmt.Sprintf("comment %d", id),
			Time:   1700000000 + id,
		}
	}
}

func (g *fakeGateway) setFail(id int64, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail[id] = err
}

func (g *fakeGateway) calls() int32 {
	return g.topCalls.Load() + g.storyCalls.Load() + g.commentCalls.Load()
}

func (g *fakeGateway) TopStoryIDs(ctx context.Context) ([]int64, error) {
	g.topCalls.Add(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.topErr != nil {
		return nil, g.topErr
	}
	return append([]int64(nil), g.topIDs...), nil
}

func (g *fakeGateway) enter(id int64) {
	n := g.inFlight.Add(1)
	for {
		cur := g.maxInFlight.Load()
		if n <= cur || g.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if g.before != nil {
		g.before(id)
	}
}

func (g *fakeGateway) Story(ctx context.Context, id int64) (*fetch.Story, error) {
	g.storyCalls.Add(1)
	g.enter(id)
	defer g.inFlight.Add(-1)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail[id]; err != nil {
		return nil, err
	}
	st, ok := g.stories[id]
	if !ok {
		return nil, &fetch.ProtocolError{Op: "fetch story", Err: fetch.ErrNullItem}
	}
	cp := *st
	return &cp, nil
}

func (g *fakeGateway) Comment(ctx context.Context, id int64) (*fetch.Comment, error) {
	g.commentCalls.Add(1)
	g.enter(id)
	defer g.inFlight.Add(-1)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail[id]; err != nil {
		return nil, err
	}
	c, ok := g.comments[id]
	if !ok {
		return nil, &fetch.ProtocolError{Op: "fetch comment", Err: fetch.ErrNullItem}
	}
	cp := *c
	return &cp, nil
}

// fakeRecorder implements Recorder for testing.
type fakeRecorder struct {
	mu       sync.Mutex
	loads    []string
	hydrated map[string]int
}

func (r *fakeRecorder) RecordPageLoad(mediator, kind, status string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, mediator+"/"+kind+"/"+status)
}

func (r *fakeRecorder) RecordItemsHydrated(mediator string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hydrated == nil {
		r.hydrated = make(map[string]int)
	}
	r.hydrated[mediator] += n
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seq(from, to int64) []int64 {
	ids := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}

func storyIDs(t *testing.T, s *store.Store) []int64 {
	t.Helper()
	stories, err := s.Stories(context.Background(), 0, 1000)
	if err != nil {
		t.Fatalf("Stories failed: %v", err)
	}
	ids := make([]int64, len(stories))
	for i, st := range stories {
		ids[i] = st.ID
	}
	return ids
}

func commentIDs(t *testing.T, s *store.Store, storyID int64) []int64 {
	t.Helper()
	comments, err := s.Comments(context.Background(), storyID, 0, 1000)
	if err != nil {
		t.Fatalf("Comments failed: %v", err)
	}
	ids := make([]int64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func wantStatus(t *testing.T, res Result, want Status) {
	t.Helper()
	if res.Status != want {
		t.Fatalf("status = %v (err %v), want %v", res.Status, res.Err, want)
	}
}
