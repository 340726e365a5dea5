// Package app is the composition root. It builds the cache, the API client,
// the metrics collector and the mediators from a Config, and owns their
// lifecycle. Nothing here is a process-wide singleton.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/abelbrown/hnreader/internal/config"
	"github.com/abelbrown/hnreader/internal/fetch"
	"github.com/abelbrown/hnreader/internal/logging"
	"github.com/abelbrown/hnreader/internal/metrics"
	"github.com/abelbrown/hnreader/internal/paging"
	"github.com/abelbrown/hnreader/internal/store"
)

// App holds the resources shared by every command.
type App struct {
	cfg      *config.Config
	store    *store.Store
	gateway  paging.Gateway
	registry *prometheus.Registry
	metrics  *metrics.Collector
	server   *http.Server
	log      *log.Logger

	// commentLocks is shared by every comment mediator this App builds.
	commentLocks *paging.StoryLocks
}

// New opens the cache and builds the API client described by cfg.
// The caller must Close the App.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	st, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	client := fetch.NewClient(cfg.API.BaseURL, cfg.API.Timeout, cfg.API.RequestsPerSecond, cfg.API.Burst)
	return newApp(cfg, st, client), nil
}

func newApp(cfg *config.Config, st *store.Store, gateway paging.Gateway) *App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &App{
		cfg:      cfg,
		store:    st,
		gateway:  gateway,
		registry: reg,
		metrics:  metrics.NewCollector(reg),
		log:      logging.WithPrefix("app"),

		commentLocks: paging.NewStoryLocks(),
	}
}

// OpenStore opens the cache at cfg.Store.Path, creating its directory and
// applying pending migrations.
func OpenStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := config.ExpandPath(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", dbPath, err)
	}
	return st, nil
}

// StartMetrics serves /metrics and /healthz when metrics.addr is set.
func (a *App) StartMetrics() {
	if a.cfg.Metrics.Addr == "" {
		return
	}
	a.server = metrics.NewServer(a.cfg.Metrics.Addr, a.registry)
	go func() {
		a.log.Info("Metrics server listening", "addr", a.cfg.Metrics.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Metrics server failed", "error", err)
		}
	}()
}

// Close stops the metrics server and closes the cache.
func (a *App) Close() error {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.log.Warn("Metrics server shutdown", "error", err)
		}
	}
	return a.store.Close()
}

func (a *App) options() paging.Options {
	return paging.Options{
		PageSize:      a.cfg.Paging.PageSize,
		MaxConcurrent: a.cfg.Paging.MaxConcurrent,
		Recorder:      a.metrics,
		Locks:         a.commentLocks,
	}
}

// StoryMediator returns a mediator over the top story list.
func (a *App) StoryMediator() *paging.StoryMediator {
	return paging.NewStoryMediator(a.gateway, a.store, a.options())
}

// CommentMediator returns a mediator over the direct comments of a story
// already in the cache. The comment ids come from the refs captured when the
// story was paged, so nothing is fetched here.
func (a *App) CommentMediator(ctx context.Context, storyID int64) (*paging.CommentMediator, store.StoryRecord, error) {
	withComments, err := a.store.StoryWithComments(ctx, storyID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.StoryRecord{}, fmt.Errorf("story %d is not cached; page it in with sync first", storyID)
	}
	if err != nil {
		return nil, store.StoryRecord{}, err
	}
	return paging.NewCommentMediator(a.gateway, a.store, withComments, a.options()), withComments.Story, nil
}
