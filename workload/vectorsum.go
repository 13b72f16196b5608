package workload

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// ErrNaN is reported for vectors that contain NaN.
var ErrNaN = errors.New("vector contains NaN")

// A Sum is the sum of the elements of a vector of length Len.
type Sum struct {
	Len   int
	Value float64
}

func (s Sum) String() string {
	return fmt.Sprintf("%d elements, sum=%.6g", s.Len, s.Value)
}

// EqualSum returns an equivalence function for sums of vectors of the
// same length whose values are within the relative tolerance rel of each
// other.
func EqualSum(rel float64) func(a, b Sum) bool {
	return func(a, b Sum) bool {
		return a.Len == b.Len && scalar.EqualWithinAbsOrRel(a.Value, b.Value, rel, rel)
	}
}

// VectorSum adds up the elements of a vector. It repeats the summation
// Rounds times to make each item more expensive; the result does not
// depend on Rounds.
type VectorSum struct {
	Rounds int
}

// Process implements parbench.Workload.
func (v VectorSum) Process(_ context.Context, in []float64) (Sum, error) {
	if floats.HasNaN(in) {
		return Sum{}, ErrNaN
	}
	sum := floats.Sum(in)
	for i := 1; i < v.Rounds; i++ {
		sum = floats.Sum(in)
	}
	return Sum{Len: len(in), Value: sum}, nil
}
