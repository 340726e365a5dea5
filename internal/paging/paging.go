// Package paging bridges the remote Hacker News API and the local cache.
//
// A mediator resolves each load request (refresh, append, prepend) into
// zero or more remote fetches, hydrates the results into local records and
// writes them in one transaction. The view reads the store's live ordered
// sequence; it never sees a partial page.
//
// Mediators serialize their own loads. Within one load, item fetches run
// concurrently with a bounded fan-out; persisted order comes from rank or
// list position, never from completion order.
package paging

import (
	"context"
	"errors"
	"time"

	"github.com/abelbrown/hnreader/internal/fetch"
	"github.com/abelbrown/hnreader/internal/store"
)

// LoadKind is the kind of load the view requests.
type LoadKind int

const (
	Refresh LoadKind = iota
	Append
	Prepend
)

func (k LoadKind) String() string {
	switch k {
	case Refresh:
		return "refresh"
	case Append:
		return "append"
	case Prepend:
		return "prepend"
	default:
		return "unknown"
	}
}

// Status is the outcome of one load.
type Status int

const (
	MoreAvailable Status = iota
	EndOfData
	Failed
)

func (s Status) String() string {
	switch s {
	case MoreAvailable:
		return "more"
	case EndOfData:
		return "end"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// Result reports a finished load. Err is set only when Status is Failed.
type Result struct {
	Status Status
	Err    error
}

func more() Result            { return Result{Status: MoreAvailable} }
func endOfData() Result       { return Result{Status: EndOfData} }
func failed(err error) Result { return Result{Status: Failed, Err: err} }

// IsFatal reports whether err is a local persistence failure. The session
// cannot recover from one, so the view stops issuing loads.
func IsFatal(err error) bool {
	var storeErr *store.Error
	return errors.As(err, &storeErr)
}

// Loader is what the view drives.
type Loader interface {
	Load(ctx context.Context, kind LoadKind) Result
}

// Sequence is a live, ordered, paged read of the records a mediator owns.
type Sequence[T any] interface {
	Count(ctx context.Context) (int, error)
	Window(ctx context.Context, offset, limit int) ([]T, error)
}

// Gateway fetches remote data. Each call may fail independently.
type Gateway interface {
	TopStoryIDs(ctx context.Context) ([]int64, error)
	Story(ctx context.Context, id int64) (*fetch.Story, error)
	Comment(ctx context.Context, id int64) (*fetch.Comment, error)
}

// Recorder receives load metrics. metrics.Collector implements it.
type Recorder interface {
	RecordPageLoad(mediator, kind, status string, elapsed time.Duration)
	RecordItemsHydrated(mediator string, n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordPageLoad(string, string, string, time.Duration) {}
func (nopRecorder) RecordItemsHydrated(string, int)                      {}

// Options configures a mediator.
type Options struct {
	PageSize      int
	MaxConcurrent int      // per-page fetch fan-out
	Recorder      Recorder // nil disables metrics

	// Locks serializes comment loads across mediators of the same story.
	Locks *StoryLocks
}

const (
	defaultPageSize      = 30
	defaultMaxConcurrent = 8
)

func (o Options) withDefaults() Options {
	if o.PageSize < 1 {
		o.PageSize = defaultPageSize
	}
	if o.MaxConcurrent < 1 {
		o.MaxConcurrent = defaultMaxConcurrent
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}
