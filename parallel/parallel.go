// Package parallel provides a fixed-size worker pool that applies a
// workload to every item of a batch, and reassembles the results in input
// order.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/exascience/parbench"
	"github.com/exascience/parbench/internal"
)

// Config determines the shape of a Pool.
type Config struct {
	// Workers is the number of workers. If Workers is 0,
	// runtime.GOMAXPROCS(0) is used.
	Workers int

	// Mode selects between OS-thread-pinned workers for CPU-bound
	// payloads and plain goroutines for I/O-bound payloads.
	Mode parbench.Mode

	// Schedule selects how items are distributed over the workers.
	Schedule parbench.Schedule

	// ItemTimeout bounds each workload invocation, if positive.
	ItemTimeout time.Duration
}

/*
A Pool is a fixed-size group of workers. Its size is determined when it
is created and does not change afterwards.

Workers only exist while Map runs: Map starts them, and Map joins all of
them before it returns, on every exit path. Live reports how many workers
are currently running.

A Pool must not be copied after first use.
*/
type Pool struct {
	workers     int
	mode        parbench.Mode
	schedule    parbench.Schedule
	itemTimeout time.Duration
	live        atomic.Int32
}

// NewPool creates a pool with the given configuration. It returns a
// *parbench.PoolError if the configuration cannot yield a working pool.
func NewPool(cfg Config) (*Pool, error) {
	workers, err := internal.ComputeNofWorkers(cfg.Workers)
	if err != nil {
		return nil, &parbench.PoolError{Op: "start", Err: err}
	}
	switch cfg.Mode {
	case parbench.CPUBound, parbench.IOBound:
	default:
		return nil, &parbench.PoolError{Op: "start", Err: fmt.Errorf("invalid mode: %v", cfg.Mode)}
	}
	switch cfg.Schedule {
	case parbench.Dynamic, parbench.Static:
	default:
		return nil, &parbench.PoolError{Op: "start", Err: fmt.Errorf("invalid schedule: %v", cfg.Schedule)}
	}
	return &Pool{
		workers:     workers,
		mode:        cfg.Mode,
		schedule:    cfg.Schedule,
		itemTimeout: cfg.ItemTimeout,
	}, nil
}

// Workers returns the size of the pool.
func (p *Pool) Workers() int { return p.workers }

// Mode returns the execution mode of the pool.
func (p *Pool) Mode() parbench.Mode { return p.mode }

// Schedule returns the schedule of the pool.
func (p *Pool) Schedule() parbench.Schedule { return p.schedule }

// Live returns the number of workers of this pool that are currently
// running.
func (p *Pool) Live() int { return int(p.live.Load()) }

/*
Map receives a pool, a batch of items, and a workload w, and invokes w on
the items on the pool's workers.

Map returns one record per item, where record i belongs to items[i],
regardless of the order in which the workers finish. A failing or
panicking item is recorded as an *parbench.ItemError in its own record and
does not affect the other items.

Map blocks until every worker has terminated. If the batch as a whole
cannot be completed, for example because ctx is done, Map returns a
*parbench.PoolError and no records.

No more workers than items are started. An empty batch starts no workers.
*/
func Map[I, O any](
	ctx context.Context,
	p *Pool,
	items []I,
	w parbench.Workload[I, O],
) ([]parbench.Record[O], error) {
	if len(items) == 0 {
		return []parbench.Record[O]{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &parbench.PoolError{Op: "start", Err: err}
	}
	records := make([]parbench.Record[O], len(items))
	filled := make([]bool, len(items))
	apply := func(i int) {
		records[i] = internal.Apply(ctx, w, i, items[i], p.itemTimeout)
		filled[i] = true
	}
	var err error
	switch p.schedule {
	case parbench.Static:
		err = p.runStatic(ctx, len(items), apply)
	default:
		err = p.runDynamic(ctx, len(items), apply)
	}
	if err != nil {
		return nil, err
	}
	for i, ok := range filled {
		if !ok {
			return nil, &parbench.PoolError{Op: "collect", Err: fmt.Errorf("item %d: %w", i, internal.ErrNoResult)}
		}
	}
	return records, nil
}

// enter registers a running worker and pins it to its OS thread for
// CPU-bound pools. The returned function undoes both.
func (p *Pool) enter() (exit func()) {
	p.live.Add(1)
	if p.mode == parbench.CPUBound {
		runtime.LockOSThread()
		return func() {
			runtime.UnlockOSThread()
			p.live.Add(-1)
		}
	}
	return func() { p.live.Add(-1) }
}

func (p *Pool) runDynamic(ctx context.Context, n int, apply func(int)) error {
	indices := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(indices)
		for i := 0; i < n; i++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case indices <- i:
			}
		}
		return nil
	})
	for range min(p.workers, n) {
		g.Go(func() (err error) {
			defer p.enter()()
			defer func() {
				if r := recover(); r != nil {
					err = internal.WrapPanic(r)
				}
			}()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case i, ok := <-indices:
					if !ok {
						return nil
					}
					apply(i)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return &parbench.PoolError{Op: "run", Err: err}
	}
	return nil
}

func (p *Pool) runStatic(ctx context.Context, n int, apply func(int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &parbench.PoolError{Op: "run", Err: internal.WrapPanic(r)}
		}
	}()
	if err = Range(0, n, min(p.workers, n), func(low, high int) error {
		defer p.enter()()
		for i := low; i < high; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			apply(i)
		}
		return nil
	}); err != nil {
		return &parbench.PoolError{Op: "run", Err: err}
	}
	return nil
}

// Range receives a range, a batch count n, and a range function f,
// divides the range into batches, and invokes the range function for
// each of these batches in parallel, covering the half-open interval
// from low to high, including low but excluding high.
//
// The range is specified by a low and high integer, with low <=
// high. The batches are determined by dividing up the size of the
// range (high - low) by n. If n is 0, runtime.GOMAXPROCS(0) batches
// are used.
//
// The range function is invoked for each batch in its own goroutine,
// with 0 <= low <= high, and Range returns only when all range
// functions have terminated, returning the left-most error value
// that is different from nil.
//
// Range panics if high < low, or if n < 0.
//
// If one or more range function invocations panic, the corresponding
// goroutines recover the panics, and Range eventually panics with
// the left-most recovered panic value.
func Range(
	low, high, n int,
	f func(low, high int) error,
) error {
	var recur func(int, int, int) error
	recur = func(low, high, n int) (err error) {
		switch {
		case n == 1:
			return f(low, high)
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				return f(low, high)
			}
			var err0, err1 error
			var p interface{}
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer func() {
					p = recover()
					wg.Done()
				}()
				err1 = recur(mid, high, n-half)
			}()
			func() {
				defer func() {
					if q := recover(); q != nil {
						wg.Wait()
						panic(q)
					}
				}()
				err0 = recur(low, mid, half)
			}()
			wg.Wait()
			if p != nil {
				panic(p)
			}
			if err0 != nil {
				err = err0
			} else {
				err = err1
			}
			return
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	return recur(low, high, internal.ComputeNofBatches(low, high, n))
}
