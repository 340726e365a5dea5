package paging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/hnreader/internal/logging"
)

// hydrate runs fetch for indexes 0..n-1 with at most limit in flight and
// returns the results in index order. Every fetch runs to completion even
// after one fails; the first error is returned and all results discarded.
func hydrate[T any](ctx context.Context, limit, n int, fetch func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)

	// Plain Group, not WithContext: a failure must not cancel siblings.
	var g errgroup.Group
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			v, err := fetch(ctx, i)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// instrument runs one load under a correlation id, logs its outcome and
// reports it to rec.
func instrument(ctx context.Context, rec Recorder, mediator string, kind LoadKind, load func(ctx context.Context) (Result, int)) Result {
	loadID := uuid.NewString()
	start := time.Now()

	logging.Debug("Page load started", "mediator", mediator, "kind", kind, "load_id", loadID)

	res, hydrated := load(ctx)
	elapsed := time.Since(start)

	rec.RecordPageLoad(mediator, kind.String(), res.Status.String(), elapsed)
	if res.Status != Failed && hydrated > 0 {
		rec.RecordItemsHydrated(mediator, hydrated)
	}

	kv := []interface{}{
		"mediator", mediator,
		"kind", kind,
		"load_id", loadID,
		"status", res.Status,
		"items", hydrated,
		"elapsed", elapsed.Round(time.Millisecond),
	}
	switch {
	case res.Status != Failed:
		logging.Info("Page load finished", kv...)
	case IsFatal(res.Err):
		logging.Error("Page load failed", append(kv, "error", res.Err)...)
	default:
		logging.Warn("Page load failed", append(kv, "error", res.Err)...)
	}
	return res
}
