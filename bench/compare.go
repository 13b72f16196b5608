package bench

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/exascience/parbench"
)

// DefaultTolerance is the relative tolerance used for floating-point
// results when no other tolerance is configured. Summation order may
// legitimately differ between the two passes.
const DefaultTolerance = 1e-6

// A Mismatch describes a result position at which the sequential and the
// parallel pass disagree.
type Mismatch struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

/*
Compare compares two record sequences index by index.

Two records match if both failed, or if both succeeded and equal reports
their values as equivalent. A record that failed in only one of the
sequences is a mismatch. If the sequences differ in length, Compare
reports a mismatch at the first index that only one of them has, and
compares the common prefix.
*/
func Compare[O any](seq, par []parbench.Record[O], equal func(a, b O) bool) (mismatches []Mismatch) {
	n := min(len(seq), len(par))
	for i := 0; i < n; i++ {
		s, p := seq[i], par[i]
		switch {
		case s.Failed() && p.Failed():
		case s.Failed():
			mismatches = append(mismatches, Mismatch{i, fmt.Sprintf("only the sequential pass failed: %v", s.Err)})
		case p.Failed():
			mismatches = append(mismatches, Mismatch{i, fmt.Sprintf("only the parallel pass failed: %v", p.Err)})
		case !equal(s.Value, p.Value):
			mismatches = append(mismatches, Mismatch{i, fmt.Sprintf("sequential %v, parallel %v", s.Value, p.Value)})
		}
	}
	if len(seq) != len(par) {
		mismatches = append(mismatches, Mismatch{n, fmt.Sprintf("sequential has %d results, parallel has %d", len(seq), len(par))})
	}
	return
}

// Exact returns an equivalence function that uses ==.
func Exact[O comparable]() func(a, b O) bool {
	return func(a, b O) bool { return a == b }
}

// Float64Within returns an equivalence function that accepts two values
// if they are within the absolute tolerance abs or the relative tolerance
// rel of each other.
func Float64Within(rel, abs float64) func(a, b float64) bool {
	return func(a, b float64) bool {
		return scalar.EqualWithinAbsOrRel(a, b, abs, rel)
	}
}

// Speedup returns seq / par, or 0 if par is not positive.
func Speedup(seq, par time.Duration) float64 {
	if par <= 0 || seq <= 0 {
		return 0
	}
	return seq.Seconds() / par.Seconds()
}
