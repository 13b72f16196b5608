package parbench

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type (
	// A Workload transforms one input record into one output record.
	//
	// Process may be called concurrently for different inputs, and must
	// not rely on mutable state shared between calls. For the comparison
	// between sequential and parallel results to be meaningful, Process
	// should also be deterministic.
	Workload[I, O any] interface {
		Process(ctx context.Context, in I) (O, error)
	}

	// A Func is a function that implements the Workload interface.
	Func[I, O any] func(ctx context.Context, in I) (O, error)

	// A Record is the result of applying a workload to the input at
	// position Index, together with the wall-clock time spent producing
	// it.
	//
	// If the workload failed for this input, Err is an *ItemError and
	// Value is the zero value of O.
	Record[O any] struct {
		Index    int
		Value    O
		Err      error
		Duration time.Duration
	}
)

// Process calls f(ctx, in).
func (f Func[I, O]) Process(ctx context.Context, in I) (O, error) {
	return f(ctx, in)
}

// Failed reports whether the workload failed for this record's input.
func (r Record[O]) Failed() bool {
	return r.Err != nil
}

// A Mode tells a worker pool what kind of payload it executes.
type Mode int

const (
	// CPUBound pools pin each worker to its own OS thread, so that
	// compute-heavy payloads run truly in parallel.
	CPUBound Mode = iota

	// IOBound pools run workers as plain goroutines, which suits payloads
	// that spend most of their time waiting on files or the network.
	IOBound
)

func (m Mode) String() string {
	switch m {
	case CPUBound:
		return "cpu"
	case IOBound:
		return "io"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode returns the Mode named by s, which is either "cpu" or "io".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "cpu", "":
		return CPUBound, nil
	case "io":
		return IOBound, nil
	default:
		return 0, fmt.Errorf("invalid execution mode: %q", s)
	}
}

// A Schedule determines how a worker pool distributes items over its
// workers.
type Schedule int

const (
	// Dynamic pools let idle workers pull the next unprocessed item,
	// which balances uneven per-item costs.
	Dynamic Schedule = iota

	// Static pools divide the batch into one contiguous range per worker
	// up front.
	Static
)

func (s Schedule) String() string {
	switch s {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	default:
		return fmt.Sprintf("Schedule(%d)", int(s))
	}
}

// ParseSchedule returns the Schedule named by s, which is either "dynamic"
// or "static".
func ParseSchedule(s string) (Schedule, error) {
	switch strings.ToLower(s) {
	case "dynamic", "":
		return Dynamic, nil
	case "static":
		return Static, nil
	default:
		return 0, fmt.Errorf("invalid schedule: %q", s)
	}
}

// An ItemError records that a workload failed for the input at position
// Index. It occupies that input's result slot, so that the other results
// stay aligned with their inputs.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// A PoolError reports that a batch as a whole could not be completed, for
// example because the worker pool could not be started, or because a
// worker stopped before producing all of its results. No partial results
// accompany a PoolError.
type PoolError struct {
	Op  string
	Err error
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("pool %s: %v", e.Op, e.Err)
}

func (e *PoolError) Unwrap() error {
	return e.Err
}
