package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/hnreader/internal/config"
	"github.com/abelbrown/hnreader/internal/fetch"
	"github.com/abelbrown/hnreader/internal/paging"
)

// fakeHN serves a tiny Hacker News API.
func fakeHN(t *testing.T, items map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := items[r.URL.Path]
		if !ok {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func defaultItems() map[string]string {
	return map[string]string{
		"/topstories.json": `[1,2,3]`,
		"/item/1.json":     `{"id":1,"type":"story","by":"pg","title":"Story one","score":10,"time":1700000000,"kids":[11,12],"descendants":2}`,
		"/item/2.json":     `{"id":2,"type":"story","by":"dang","title":"Story two","score":20,"time":1700000100}`,
		"/item/3.json":     `{"id":3,"type":"job","by":"yc","title":"Job three","score":1,"time":1700000200}`,
		"/item/11.json":    `{"id":11,"type":"comment","by":"alice","parent":1,"text":"Hello <i>there</i><p>Second, see <a href=\"https://go.dev/doc\">the docs</a>","time":1700000300}`,
		"/item/12.json":    `{"id":12,"type":"comment","parent":1,"deleted":true,"time":1700000400}`,
	}
}

func newTestApp(t *testing.T, baseURL string, pageSize int) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.API.RequestsPerSecond = 0
	cfg.API.Timeout = 5 * time.Second
	cfg.Store.Path = ":memory:"
	cfg.Paging.PageSize = pageSize

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSync(t *testing.T) {
	srv := fakeHN(t, defaultItems())
	a := newTestApp(t, srv.URL, 2)

	var out bytes.Buffer
	if err := a.Sync(context.Background(), 5, &out); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	want := "  1. Story one (10) [1]\n  2. Story two (20) [2]\n  3. Job three (1) [3]\n"
	if out.String() != want {
		t.Errorf("Sync output =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestSyncStopsAfterPages(t *testing.T) {
	srv := fakeHN(t, defaultItems())
	a := newTestApp(t, srv.URL, 2)

	var out bytes.Buffer
	if err := a.Sync(context.Background(), 1, &out); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if n := strings.Count(out.String(), "\n"); n != 2 {
		t.Errorf("printed %d stories, want 2:\n%s", n, out.String())
	}
}

func TestSyncReportsFetchFailure(t *testing.T) {
	items := defaultItems()
	delete(items, "/item/2.json")
	srv := fakeHN(t, items)
	a := newTestApp(t, srv.URL, 5)

	err := a.Sync(context.Background(), 1, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected an error")
	}
	var netErr *fetch.NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("err = %v, want a NetworkError", err)
	}

	// Nothing from the failed page is cached.
	n, err := a.StoryMediator().Sequence().Count(context.Background())
	if err != nil || n != 0 {
		t.Errorf("cached stories = %d, %v; want 0", n, err)
	}
}

func TestComments(t *testing.T) {
	srv := fakeHN(t, defaultItems())
	a := newTestApp(t, srv.URL, 30)
	ctx := context.Background()

	if err := a.Sync(ctx, 1, &bytes.Buffer{}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	var out bytes.Buffer
	if err := a.Comments(ctx, 1, 3, &out); err != nil {
		t.Fatalf("Comments failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Story one\n2 of 2 comments",
		"[11] alice, ",
		"    Hello there\n    \n    Second, see the docs\n    [1] https://go.dev/doc\n",
		"[12] <deleted comment>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "[11]") > strings.Index(got, "[12]") {
		t.Errorf("comments out of list order:\n%s", got)
	}
}

func TestCommentMediatorsForOneStoryDoNotDuplicateRows(t *testing.T) {
	items := defaultItems()
	items["/item/1.json"] = `{"id":1,"type":"story","by":"pg","title":"Story one","score":10,"time":1700000000,"kids":[11,12,13,14],"descendants":4}`
	items["/item/13.json"] = `{"id":13,"type":"comment","by":"carol","parent":1,"text":"third","time":1700000500}`
	items["/item/14.json"] = `{"id":14,"type":"comment","by":"dave","parent":1,"text":"fourth","time":1700000600}`

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/item/13.json" {
			once.Do(func() { close(started) })
			<-release
		}
		body, ok := items[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	a := newTestApp(t, srv.URL, 2)
	ctx := context.Background()
	if err := a.Sync(ctx, 1, &bytes.Buffer{}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	// The comment screen is opened, left and opened again on story 1.
	first, _, err := a.CommentMediator(ctx, 1)
	if err != nil {
		t.Fatalf("CommentMediator failed: %v", err)
	}
	second, _, err := a.CommentMediator(ctx, 1)
	if err != nil {
		t.Fatalf("CommentMediator failed: %v", err)
	}
	if res := first.Load(ctx, paging.Refresh); res.Status != paging.MoreAvailable {
		t.Fatalf("refresh = %v (%v)", res.Status, res.Err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		first.Load(ctx, paging.Append)
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		second.Load(ctx, paging.Append)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	n, err := second.Sequence().Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 4 {
		t.Errorf("cached comments = %d, want 4", n)
	}
}

func TestCommentsRequiresCachedStory(t *testing.T) {
	srv := fakeHN(t, defaultItems())
	a := newTestApp(t, srv.URL, 30)

	err := a.Comments(context.Background(), 999, 1, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "not cached") {
		t.Errorf("err = %v, want not cached", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paging.PageSize = 0
	if _, err := New(cfg); err == nil {
		t.Error("expected invalid config error")
	}
}

func TestMetricsRecorded(t *testing.T) {
	srv := fakeHN(t, defaultItems())
	a := newTestApp(t, srv.URL, 2)

	if err := a.Sync(context.Background(), 2, &bytes.Buffer{}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	families, err := a.registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	var loads float64
	for _, mf := range families {
		if mf.GetName() != "hnreader_page_loads_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			loads += m.GetCounter().GetValue()
		}
	}
	if loads != 2 {
		t.Errorf("page loads = %v, want 2", loads)
	}
}
