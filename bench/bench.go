/*
Package bench runs a workload over one batch of inputs twice, first
sequentially and then on a worker pool, and derives elapsed times,
speedup, per-item duration statistics, and a correctness delta from the
two passes.

The package performs no printing. Callers render an Outcome, or its
Summary, however they like.
*/
package bench

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/exascience/parbench"
	"github.com/exascience/parbench/metrics"
	"github.com/exascience/parbench/parallel"
	"github.com/exascience/parbench/sequential"
)

// Options configure a benchmark run.
type Options[O any] struct {
	// Workers, Mode, Schedule, and ItemTimeout configure the worker pool
	// of the parallel pass. ItemTimeout applies to the sequential pass as
	// well.
	Workers     int
	Mode        parbench.Mode
	Schedule    parbench.Schedule
	ItemTimeout time.Duration

	// Equal decides whether a sequential and a parallel result are
	// equivalent. If Equal is nil, reflect.DeepEqual is used.
	Equal func(a, b O) bool

	// Nondeterministic disables the comparison of the two passes, for
	// workloads whose results legitimately differ between runs.
	Nondeterministic bool

	// Recorder receives measurements. It may be nil.
	Recorder *metrics.Recorder
}

// A Pass is the result of one pass over a batch.
type Pass[O any] struct {
	Records []parbench.Record[O]
	Elapsed time.Duration
	Stats   DurationStats
}

func newPass[O any](records []parbench.Record[O], elapsed time.Duration) Pass[O] {
	durations := make([]time.Duration, len(records))
	for i, rec := range records {
		durations[i] = rec.Duration
	}
	return Pass[O]{
		Records: records,
		Elapsed: elapsed,
		Stats:   NewDurationStats(durations),
	}
}

// Failed returns the number of records for which the workload failed.
func (p Pass[O]) Failed() (n int) {
	for _, rec := range p.Records {
		if rec.Failed() {
			n++
		}
	}
	return
}

// Succeeded returns the number of records for which the workload
// succeeded.
func (p Pass[O]) Succeeded() int {
	return len(p.Records) - p.Failed()
}

// An Outcome aggregates both passes of one benchmark over one batch.
type Outcome[O any] struct {
	Name     string
	Items    int
	Workers  int
	Mode     parbench.Mode
	Schedule parbench.Schedule

	Sequential Pass[O]
	Parallel   Pass[O]

	// Speedup is Sequential.Elapsed / Parallel.Elapsed, or 0 if the
	// parallel pass took no measurable time or the batch was empty.
	Speedup float64

	// Efficiency is Speedup divided by the number of workers.
	Efficiency float64

	// Compared reports whether the passes were compared at all, see
	// Options.Nondeterministic.
	Compared   bool
	Mismatches []Mismatch
}

// Consistent reports whether both passes produced equivalent results.
func (o *Outcome[O]) Consistent() bool {
	return len(o.Mismatches) == 0
}

/*
Run benchmarks the workload w over items.

Run first applies w to every item sequentially, then applies it again on a
worker pool configured by opts. The elapsed time of the parallel pass
includes starting and joining the pool's workers. Run then computes the
speedup and compares the two result sequences index by index.

Failures of individual items are recorded in the returned outcome. Run
returns an error only if a pass as a whole failed, in which case no
outcome is returned; the error then wraps a *parbench.PoolError.

Run does not modify items.
*/
func Run[I, O any](
	ctx context.Context,
	name string,
	items []I,
	w parbench.Workload[I, O],
	opts Options[O],
) (*Outcome[O], error) {
	pool, err := parallel.NewPool(parallel.Config{
		Workers:     opts.Workers,
		Mode:        opts.Mode,
		Schedule:    opts.Schedule,
		ItemTimeout: opts.ItemTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logger := logx.WithContext(ctx)

	start := time.Now()
	seqRecords, err := sequential.Map(ctx, items, w, sequential.WithItemTimeout(opts.ItemTimeout))
	seq := newPass(seqRecords, time.Since(start))
	if err != nil {
		logger.Errorw("sequential pass failed", logx.Field("benchmark", name), logx.Field("error", err.Error()))
		return nil, fmt.Errorf("%s: sequential pass: %w", name, err)
	}
	observe(ctx, opts.Recorder, name, "sequential", seq)
	logger.WithDuration(seq.Elapsed).Infow("sequential pass done",
		logx.Field("benchmark", name),
		logx.Field("items", len(items)),
		logx.Field("failed", seq.Failed()))

	start = time.Now()
	parRecords, err := parallel.Map(ctx, pool, items, w)
	par := newPass(parRecords, time.Since(start))
	if err != nil {
		logger.Errorw("parallel pass failed", logx.Field("benchmark", name), logx.Field("error", err.Error()))
		return nil, fmt.Errorf("%s: parallel pass: %w", name, err)
	}
	observe(ctx, opts.Recorder, name, "parallel", par)
	logger.WithDuration(par.Elapsed).Infow("parallel pass done",
		logx.Field("benchmark", name),
		logx.Field("items", len(items)),
		logx.Field("workers", pool.Workers()),
		logx.Field("mode", pool.Mode().String()),
		logx.Field("failed", par.Failed()))

	outcome := &Outcome[O]{
		Name:       name,
		Items:      len(items),
		Workers:    pool.Workers(),
		Mode:       pool.Mode(),
		Schedule:   pool.Schedule(),
		Sequential: seq,
		Parallel:   par,
	}
	if len(items) > 0 {
		outcome.Speedup = Speedup(seq.Elapsed, par.Elapsed)
		outcome.Efficiency = outcome.Speedup / float64(outcome.Workers)
	}
	if !opts.Nondeterministic {
		equal := opts.Equal
		if equal == nil {
			equal = func(a, b O) bool { return reflect.DeepEqual(a, b) }
		}
		outcome.Compared = true
		outcome.Mismatches = Compare(seq.Records, par.Records, equal)
	}
	opts.Recorder.Outcome(ctx, name, outcome.Speedup, len(outcome.Mismatches))
	if len(outcome.Mismatches) > 0 {
		logger.Infow("sequential and parallel results differ",
			logx.Field("benchmark", name),
			logx.Field("mismatches", len(outcome.Mismatches)))
	}
	return outcome, nil
}

func observe[O any](ctx context.Context, r *metrics.Recorder, name, pass string, p Pass[O]) {
	if r == nil {
		return
	}
	for _, rec := range p.Records {
		r.Item(ctx, name, pass, rec.Duration, rec.Failed())
	}
	r.Pass(ctx, name, pass, p.Elapsed)
}
