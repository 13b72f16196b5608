package bench

import (
	"fmt"
	"time"

	"github.com/exascience/parbench"
)

// A Summary is a non-generic view of an Outcome, meant for reporting.
type Summary struct {
	Name       string      `json:"name"`
	Items      int         `json:"items"`
	Workers    int         `json:"workers"`
	Mode       string      `json:"mode"`
	Schedule   string      `json:"schedule"`
	Sequential PassSummary `json:"sequential"`
	Parallel   PassSummary `json:"parallel"`
	Speedup    float64     `json:"speedup"`
	Efficiency float64     `json:"efficiency"`
	Compared   bool        `json:"compared"`
	Mismatches []Mismatch  `json:"mismatches,omitempty"`
}

// PassSummary is the reporting view of a Pass.
type PassSummary struct {
	Elapsed   time.Duration `json:"elapsed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Stats     DurationStats `json:"stats"`
	Details   []Detail      `json:"details"`
}

// A Detail describes one record.
type Detail struct {
	Index    int           `json:"index"`
	Value    string        `json:"value,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Summary renders the outcome into a Summary. The format function turns a
// result value into text; if it is nil, fmt.Sprint is used.
func (o *Outcome[O]) Summary(format func(O) string) Summary {
	if format == nil {
		format = func(v O) string { return fmt.Sprint(v) }
	}
	return Summary{
		Name:       o.Name,
		Items:      o.Items,
		Workers:    o.Workers,
		Mode:       o.Mode.String(),
		Schedule:   o.Schedule.String(),
		Sequential: summarize(o.Sequential, format),
		Parallel:   summarize(o.Parallel, format),
		Speedup:    o.Speedup,
		Efficiency: o.Efficiency,
		Compared:   o.Compared,
		Mismatches: o.Mismatches,
	}
}

func summarize[O any](p Pass[O], format func(O) string) PassSummary {
	details := make([]Detail, len(p.Records))
	for i, rec := range p.Records {
		details[i] = detail(rec, format)
	}
	failed := p.Failed()
	return PassSummary{
		Elapsed:   p.Elapsed,
		Succeeded: len(p.Records) - failed,
		Failed:    failed,
		Stats:     p.Stats,
		Details:   details,
	}
}

func detail[O any](rec parbench.Record[O], format func(O) string) Detail {
	d := Detail{Index: rec.Index, Duration: rec.Duration}
	if rec.Failed() {
		d.Error = rec.Err.Error()
	} else {
		d.Value = format(rec.Value)
	}
	return d
}

// Consistent reports whether the summarized passes produced equivalent
// results.
func (s Summary) Consistent() bool {
	return len(s.Mismatches) == 0
}
