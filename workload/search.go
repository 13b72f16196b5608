package workload

import (
	"context"
	"fmt"
)

// NotFound is the position reported when the target is absent.
const NotFound = -1

// A Query asks for the first position of Target in Values.
type Query struct {
	Values []int
	Target int
}

// A Match is the answer to a Query over a vector of length Len.
type Match struct {
	Len      int
	Found    bool
	Position int
}

func (m Match) String() string {
	if !m.Found {
		return "not found"
	}
	return fmt.Sprintf("found at position %d", m.Position)
}

// Queries pairs every vector with the same target.
func Queries(vectors [][]int, target int) []Query {
	queries := make([]Query, len(vectors))
	for i, v := range vectors {
		queries[i] = Query{Values: v, Target: target}
	}
	return queries
}

// Search scans q.Values from the front and reports the first position of
// q.Target, or NotFound.
func Search(_ context.Context, q Query) (Match, error) {
	for i, v := range q.Values {
		if v == q.Target {
			return Match{Len: len(q.Values), Found: true, Position: i}, nil
		}
	}
	return Match{Len: len(q.Values), Position: NotFound}, nil
}
