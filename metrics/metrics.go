// Package metrics records benchmark measurements as OpenTelemetry
// instruments.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ScopeName is the instrumentation scope under which the parbench command
// obtains its meter.
const ScopeName = "github.com/exascience/parbench"

// A Recorder holds the instruments for one meter. A nil *Recorder
// discards all measurements.
type Recorder struct {
	items      metric.Int64Counter
	failures   metric.Int64Counter
	itemTime   metric.Float64Histogram
	passTime   metric.Float64Histogram
	speedup    metric.Float64Histogram
	mismatches metric.Int64Counter
}

// New creates the instruments of a Recorder on the given meter.
func New(meter metric.Meter) (*Recorder, error) {
	var (
		r   Recorder
		err error
	)
	if r.items, err = meter.Int64Counter("parbench.items",
		metric.WithDescription("work items processed")); err != nil {
		return nil, err
	}
	if r.failures, err = meter.Int64Counter("parbench.item_failures",
		metric.WithDescription("work items for which the workload failed")); err != nil {
		return nil, err
	}
	if r.itemTime, err = meter.Float64Histogram("parbench.item_duration",
		metric.WithDescription("time spent producing one result"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if r.passTime, err = meter.Float64Histogram("parbench.pass_duration",
		metric.WithDescription("elapsed time of one pass over a batch"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if r.speedup, err = meter.Float64Histogram("parbench.speedup",
		metric.WithDescription("sequential elapsed time divided by parallel elapsed time")); err != nil {
		return nil, err
	}
	if r.mismatches, err = meter.Int64Counter("parbench.mismatches",
		metric.WithDescription("results that differ between the sequential and parallel pass")); err != nil {
		return nil, err
	}
	return &r, nil
}

// NewNoop returns a Recorder backed by a no-op meter provider.
func NewNoop() *Recorder {
	r, err := New(noop.NewMeterProvider().Meter(ScopeName))
	if err != nil {
		panic(err)
	}
	return r
}

func attrs(benchmark, pass string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("benchmark", benchmark),
		attribute.String("pass", pass),
	)
}

// Item records the processing of one work item.
func (r *Recorder) Item(ctx context.Context, benchmark, pass string, d time.Duration, failed bool) {
	if r == nil {
		return
	}
	opt := attrs(benchmark, pass)
	r.items.Add(ctx, 1, opt)
	if failed {
		r.failures.Add(ctx, 1, opt)
	}
	r.itemTime.Record(ctx, d.Seconds(), opt)
}

// Pass records the elapsed time of one pass.
func (r *Recorder) Pass(ctx context.Context, benchmark, pass string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.passTime.Record(ctx, elapsed.Seconds(), attrs(benchmark, pass))
}

// Outcome records the speedup and correctness delta of a benchmark.
func (r *Recorder) Outcome(ctx context.Context, benchmark string, speedup float64, mismatches int) {
	if r == nil {
		return
	}
	opt := metric.WithAttributes(attribute.String("benchmark", benchmark))
	r.speedup.Record(ctx, speedup, opt)
	if mismatches > 0 {
		r.mismatches.Add(ctx, int64(mismatches), opt)
	}
}
