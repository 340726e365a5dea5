package paging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/hnreader/internal/store"
)

// commentMediator pages story 1 through the story mediator so the comment
// refs come from a real story fetch, then opens its comment mediator.
func commentMediator(t *testing.T, s *store.Store, gw *fakeGateway, pageSize int) *CommentMediator {
	t.Helper()
	ctx := context.Background()

	wantStatus(t, NewStoryMediator(gw, s, Options{PageSize: 1}).Load(ctx, Refresh), MoreAvailable)

	withComments, err := s.StoryWithComments(ctx, 1)
	if err != nil {
		t.Fatalf("StoryWithComments failed: %v", err)
	}
	return NewCommentMediator(gw, s, withComments, Options{PageSize: pageSize})
}

func TestCommentPaging(t *testing.T) {
	s := openStore(t)
	gw := newFakeGateway(1)
	gw.addComments(1, 301, 302, 303)
	m := commentMediator(t, s, gw, 2)
	ctx := context.Background()

	if m.StoryID() != 1 || m.Total() != 3 {
		t.Fatalf("StoryID/Total = %d/%d, want 1/3", m.StoryID(), m.Total())
	}

	wantStatus(t, m.Load(ctx, Refresh), MoreAvailable)
	if got := commentIDs(t, s, 1); !equalIDs(got, []int64{301, 302}) {
		t.Fatalf("after refresh comments = %v, want [301 302]", got)
	}

	wantStatus(t, m.Load(ctx, Append), MoreAvailable)
	if got := commentIDs(t, s, 1); !equalIDs(got, []int64{301, 302, 303}) {
		t.Fatalf("after append comments = %v, want [301 302 303]", got)
	}

	calls := gw.calls()
	wantStatus(t, m.Load(ctx, Append), EndOfData)
	if gw.calls() != calls {
		t.Errorf("end-of-data append made %d gateway calls", gw.calls()-calls)
	}
}

func TestCommentRefreshReplacesRows(t *testing.T) {
	s := openStore(t)
	gw := newFakeGateway(1)
	gw.addComments(1, 301, 302, 303)
	m := commentMediator(t, s, gw, 2)
	ctx := context.Background()

	wantStatus(t, m.Load(ctx, Refresh), MoreAvailable)
	wantStatus(t, m.Load(ctx, Append), MoreAvailable)
	wantStatus(t, m.Load(ctx, Refresh), MoreAvailable)

	if got := commentIDs(t, s, 1); !equalIDs(got, []int64{301, 302}) {
		t.Errorf("after second refresh comments = %v, want [301 302]", got)
	}
}

func TestCommentOrderIsListOrder(t *testing.T) {
	s := openStore(t)
	gw := newFakeGateway(1)
	// Ids deliberately out of numeric order.
	gw.addComments(1, 909, 101, 505, 303)
	m := commentMediator(t, s, gw, 10)

	wantStatus(t, m.Load(context.Background(), Refresh), MoreAvailable)
	if got := commentIDs(t, s, 1); !equalIDs(got, []int64{909, 101, 505, 303}) {
		t.Errorf("comments = %v, want list order", got)
	}
}

func TestCommentEmptyListIsEndOfData(t *testing.T) {
	s := openStore(t)
	gw := newFakeGateway(1)
	m := commentMediator(t, s, gw, 2)
	ctx := context.Background()

	// Stale rows from an earlier session are cleared.
	if err := s.AppendComments(ctx, 1, []store.CommentRecord{{ID: 7, ParentID: 1}}); err != nil {
		t.Fatalf("AppendComments failed: %v", err)
	}

	wantStatus(t, m.Load(ctx, Refresh), EndOfData)
	if n, _ := s.CommentCount(ctx, 1); n != 0 {
		t.Errorf("comment count = %d, want 0", n)
	}
	wantStatus(t, m.Load(ctx, Append), EndOfData)
	if gw.commentCalls.Load() != 0 {
		t.Errorf("comment fetches = %d, want 0", gw.commentCalls.Load())
	}
}

func TestCommentFailedFetchLeavesRowsUnchanged(t *testing.T) {
	s := openStore(t)
	gw := newFakeGateway(1)
	gw.addComments(1, seq(401, 410)...)
	m := commentMediator(t, s, gw, 5)
	ctx := context.Background()

	wantStatus(t, m.Load(ctx, Refresh), MoreAvailable)

	errBoom := errors.New("timeout")
	gw.setFail(408, errBoom)
	res := m.Load(ctx, Append)
	wantStatus(t, res, Failed)
	if !errors.Is(res.Err, errBoom) {
		t.Errorf("err = %v, want %v", res.Err, errBoom)
	}
	if got := commentIDs(t, s, 1); !equalIDs(got, seq(401, 405)) {
		t.Errorf("comments after failed append = %v, want [401..405]", got)
	}

	// A failed refresh keeps the previous rows too.
	gw.setFail(402, errBoom)
	wantStatus(t, m.Load(ctx, Refresh), Failed)
	if got := commentIDs(t, s, 1); !equalIDs(got, seq(401, 405)) {
		t.Errorf("comments after failed refresh = %v, want [401..405]", got)
	}
}

func TestCommentMediatorsAreIsolated(t *testing.T) {
	s := openStore(t)
	gw := newFakeGateway(1, 2)
	gw.addComments(1, 11, 12)
	gw.addComments(2, 21, 22)
	ctx := context.Background()

	wantStatus(t, NewStoryMediator(gw, s, Options{PageSize: 2}).Load(ctx, Refresh), MoreAvailable)

	open := func(id int64) *CommentMediator {
		withComments, err := s.StoryWithComments(ctx, id)
		if err != nil {
			t.Fatalf("StoryWithComments(%d) failed: %v", id, err)
		}
		return NewCommentMediator(gw, s, withComments, Options{PageSize: 5})
	}
	m1, m2 := open(1), open(2)

	wantStatus(t, m1.Load(ctx, Refresh), MoreAvailable)
	wantStatus(t, m2.Load(ctx, Refresh), MoreAvailable)
	wantStatus(t, m1.Load(ctx, Refresh), MoreAvailable)

	if got := commentIDs(t, s, 2); !equalIDs(got, []int64{21, 22}) {
		t.Errorf("story 2 comments = %v, want [21 22]", got)
	}
	n, err := m1.Sequence().Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("story 1 Count = %d, %v; want 2", n, err)
	}
}

func TestCommentPrependNeverFetches(t *testing.T) {
	s := openStore(t)
	gw := newFakeGateway(1)
	gw.addComments(1, 1001, 1002)
	m := commentMediator(t, s, gw, 1)
	ctx := context.Background()

	calls := gw.calls()
	wantStatus(t, m.Load(ctx, Prepend), EndOfData)
	wantStatus(t, m.Load(ctx, Refresh), MoreAvailable)
	afterRefresh := gw.calls()
	wantStatus(t, m.Load(ctx, Prepend), EndOfData)

	if gw.calls() != afterRefresh {
		t.Errorf("prepend made %d gateway calls, want 0", gw.calls()-afterRefresh)
	}
	if afterRefresh-calls != 1 {
		t.Errorf("refresh made %d gateway calls, want 1", afterRefresh-calls)
	}
}

func TestCommentRecordDefaults(t *testing.T) {
	s := openStore(t)
	gw := newFakeGateway(1)
	gw.addComments(1, 77)
	gw.comments[77].By = ""
	gw.comments[77].Text = ""
	gw.comments[77].Deleted = true
	m := commentMediator(t, s, gw, 5)
	ctx := context.Background()

	wantStatus(t, m.Load(ctx, Refresh), MoreAvailable)

	comments, err := m.Sequence().Window(ctx, 0, 10)
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}
	c := comments[0]
	if c.Author != "" || c.Text != "" || !c.Deleted || c.ParentID != 1 || c.StoryID != 1 {
		t.Errorf("unexpected comment record: %+v", c)
	}
}

func TestCommentMediatorsShareStoryLock(t *testing.T) {
	s := openStore(t)
	gw := newFakeGateway(1)
	gw.addComments(1, 10, 11, 12, 13)
	ctx := context.Background()

	wantStatus(t, NewStoryMediator(gw, s, Options{PageSize: 1}).Load(ctx, Refresh), MoreAvailable)
	withComments, err := s.StoryWithComments(ctx, 1)
	if err != nil {
		t.Fatalf("StoryWithComments failed: %v", err)
	}

	// Two screens opened on the same story.
	locks := NewStoryLocks()
	first := NewCommentMediator(gw, s, withComments, Options{PageSize: 2, Locks: locks})
	second := NewCommentMediator(gw, s, withComments, Options{PageSize: 2, Locks: locks})
	wantStatus(t, first.Load(ctx, Refresh), MoreAvailable)

	// Hold the first append inside its fetches while the second one starts.
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	gw.before = func(id int64) {
		once.Do(func() { close(started) })
		<-release
	}

	var wg sync.WaitGroup
	var firstRes, secondRes Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstRes = first.Load(ctx, Append)
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		secondRes = second.Load(ctx, Append)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	wantStatus(t, firstRes, MoreAvailable)
	wantStatus(t, secondRes, EndOfData)
	if got := commentIDs(t, s, 1); !equalIDs(got, []int64{10, 11, 12, 13}) {
		t.Errorf("comments = %v, want [10 11 12 13]", got)
	}
}

func TestStoryLocksPerStory(t *testing.T) {
	locks := NewStoryLocks()
	if locks.forStory(1) != locks.forStory(1) {
		t.Error("same story got different locks")
	}
	if locks.forStory(1) == locks.forStory(2) {
		t.Error("different stories share a lock")
	}
}
