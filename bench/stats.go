package bench

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DurationStats summarizes the per-item durations of one pass.
type DurationStats struct {
	Count  int           `json:"count"`
	Total  time.Duration `json:"total"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"stddev"`
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	P50    time.Duration `json:"p50"`
	P95    time.Duration `json:"p95"`
}

// NewDurationStats computes statistics over ds. The zero DurationStats is
// returned for an empty ds.
func NewDurationStats(ds []time.Duration) (s DurationStats) {
	if len(ds) == 0 {
		return
	}
	x := make([]float64, len(ds))
	for i, d := range ds {
		x[i] = float64(d)
	}
	slices.Sort(x)
	s.Count = len(x)
	s.Total = time.Duration(floats.Sum(x))
	s.Mean = time.Duration(stat.Mean(x, nil))
	if len(x) > 1 {
		s.StdDev = time.Duration(stat.StdDev(x, nil))
	}
	s.Min = time.Duration(x[0])
	s.Max = time.Duration(x[len(x)-1])
	s.P50 = time.Duration(stat.Quantile(0.5, stat.Empirical, x, nil))
	s.P95 = time.Duration(stat.Quantile(0.95, stat.Empirical, x, nil))
	return
}
