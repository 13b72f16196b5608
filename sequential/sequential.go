// Package sequential provides the sequential counterpart of the parallel
// package. It applies a workload to every item of a batch in input order,
// on the calling goroutine, and serves as the correctness baseline for
// parallel runs.
package sequential

import (
	"context"
	"time"

	"github.com/exascience/parbench"
	"github.com/exascience/parbench/internal"
)

// An Option configures Map.
type Option func(*options)

type options struct {
	itemTimeout time.Duration
}

// WithItemTimeout bounds the time each workload invocation may take. The
// workload sees a context that expires after d. Zero means no bound.
func WithItemTimeout(d time.Duration) Option {
	return func(o *options) {
		o.itemTimeout = d
	}
}

// Map receives a batch of items and a workload w, and invokes w on each
// item strictly in order.
//
// Map returns one record per item, where record i belongs to items[i]. A
// failing item is recorded as an *parbench.ItemError in its own record and
// does not affect the other items.
//
// Map returns a *parbench.PoolError and no records if ctx is done before
// all items have been processed.
func Map[I, O any](
	ctx context.Context,
	items []I,
	w parbench.Workload[I, O],
	opts ...Option,
) ([]parbench.Record[O], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	records := make([]parbench.Record[O], len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, &parbench.PoolError{Op: "run", Err: err}
		}
		records[i] = internal.Apply(ctx, w, i, item, o.itemTimeout)
	}
	return records, nil
}
