package internal

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/exascience/parbench"
)

// ComputeNofWorkers returns the size of a worker pool. If n is 0, the
// default is runtime.GOMAXPROCS(0). A negative n is invalid.
func ComputeNofWorkers(n int) (int, error) {
	switch {
	case n > 0:
		return n, nil
	case n == 0:
		return runtime.GOMAXPROCS(0), nil
	default:
		return 0, fmt.Errorf("invalid number of workers: %v", n)
	}
}

// ComputeNofBatches divides the size of the range (high - low) by n. If n is 0,
// a default is used that takes runtime.GOMAXPROCS(0) into account.
func ComputeNofBatches(low, high, n int) (batches int) {
	switch size := high - low; {
	case size > 0:
		switch {
		case n == 0:
			batches = runtime.GOMAXPROCS(0)
		case n > 0:
			batches = n
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
		if batches > size {
			batches = size
		}
	case size == 0:
		batches = 1
	default:
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	return
}

type runtimeError struct{ error }

func (runtimeError) RuntimeError() {}

// WrapPanic turns a recovered panic value into an error that carries the
// stack trace of the panicking goroutine. Runtime errors stay runtime
// errors.
func WrapPanic(p interface{}) error {
	if p == nil {
		return nil
	}
	r := fmt.Errorf("panic: %v\n%s", p, debug.Stack())
	if _, isRuntimeError := p.(runtime.Error); isRuntimeError {
		return runtimeError{r}
	}
	return r
}

// ErrNoResult is reported when a worker stopped before filling a result
// slot.
var ErrNoResult = errors.New("worker exited without producing a result")

// Apply invokes w on in and times it. A returned error or a panic is
// recorded as an *parbench.ItemError in the record instead of being
// propagated. If timeout is positive, the workload sees a context that
// expires after timeout.
func Apply[I, O any](ctx context.Context, w parbench.Workload[I, O], index int, in I, timeout time.Duration) (rec parbench.Record[O]) {
	rec.Index = index
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	defer func() {
		rec.Duration = time.Since(start)
		if p := recover(); p != nil {
			var zero O
			rec.Value = zero
			rec.Err = &parbench.ItemError{Index: index, Err: WrapPanic(p)}
		}
	}()
	value, err := w.Process(ctx, in)
	if err != nil {
		rec.Err = &parbench.ItemError{Index: index, Err: err}
		return
	}
	rec.Value = value
	return
}
