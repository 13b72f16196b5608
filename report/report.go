// Package report renders suite results as text or JSON.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"

	"github.com/exascience/parbench/bench"
	"github.com/exascience/parbench/suite"
)

// Reporter writes human-readable reports.
type Reporter struct {
	output io.Writer

	// Width bounds the length of per-item detail lines. Zero means no
	// bound.
	Width int

	// Details enables the per-item listing of every benchmark.
	Details bool
}

// NewReporter creates a reporter that writes to output.
func NewReporter(output io.Writer) *Reporter {
	return &Reporter{output: output, Details: true}
}

// Report reports the results of a suite run.
func (r *Reporter) Report(results suite.Results) {
	fmt.Fprintf(r.output, "\n=== parbench: %d exercise(s) ===\n\n", len(results))

	for _, result := range results {
		r.reportExercise(result)
	}

	failed := results.Failed()
	fmt.Fprintf(r.output, "\n--- Summary ---\n")
	fmt.Fprintf(r.output, "Total: %d  Success: %d  Failed: %d\n\n",
		len(results), len(results)-failed, failed)
}

func (r *Reporter) reportExercise(result suite.Result) {
	fmt.Fprintf(r.output, "--- %d. %s ---\n", result.Exercise.ID, result.Exercise.Name)
	for _, s := range result.Summaries {
		r.reportBenchmark(s)
	}
	if result.Err != nil {
		fmt.Fprintf(r.output, "FAIL: %s\n", result.Exercise.Name)
		fmt.Fprintf(r.output, "  Error: %s\n\n", result.Err)
	}
}

func (r *Reporter) reportBenchmark(s bench.Summary) {
	status := "PASS"
	if !s.Consistent() {
		status = "DIFF"
	}
	fmt.Fprintf(r.output, "%s: %s\n", status, s.Name)
	fmt.Fprintf(r.output, "  Items:      %d (%d workers, %s, %s)\n", s.Items, s.Workers, s.Mode, s.Schedule)
	r.reportPass("Sequential", s.Sequential)
	r.reportPass("Parallel", s.Parallel)
	fmt.Fprintf(r.output, "  Speedup:    %.2fx (efficiency %.0f%%)\n", s.Speedup, 100*s.Efficiency)
	if !s.Compared {
		fmt.Fprintf(r.output, "  Results:    not compared\n")
	}
	for _, m := range s.Mismatches {
		fmt.Fprintf(r.output, "  Mismatch:   item %d: %s\n", m.Index, m.Reason)
	}
	if r.Details {
		for _, d := range s.Parallel.Details {
			r.reportDetail(d)
		}
	}
	fmt.Fprintln(r.output)
}

func (r *Reporter) reportPass(name string, p bench.PassSummary) {
	fmt.Fprintf(r.output, "  %-11s %s total, %d ok, %d failed",
		name+":", formatDuration(p.Elapsed), p.Succeeded, p.Failed)
	if p.Stats.Count > 0 {
		fmt.Fprintf(r.output, ", per item avg %s, p95 %s, max %s",
			formatDuration(p.Stats.Mean), formatDuration(p.Stats.P95), formatDuration(p.Stats.Max))
	}
	fmt.Fprintln(r.output)
}

func (r *Reporter) reportDetail(d bench.Detail) {
	text := d.Value
	if d.Error != "" {
		text = "error: " + d.Error
	}
	line := fmt.Sprintf("    [%d] %s (%s)", d.Index, text, formatDuration(d.Duration))
	fmt.Fprintln(r.output, truncate(line, r.Width))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func formatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000.0)
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1000000.0)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

type (
	// Document is the JSON form of a suite run.
	Document struct {
		Exercises []Exercise `json:"exercises"`
		Failed    int        `json:"failed"`
	}

	// Exercise is the JSON form of one exercise result.
	Exercise struct {
		ID         int             `json:"id"`
		Name       string          `json:"name"`
		Benchmarks []bench.Summary `json:"benchmarks"`
		Error      string          `json:"error,omitempty"`
	}
)

// NewDocument converts results to their JSON form.
func NewDocument(results suite.Results) Document {
	doc := Document{Exercises: make([]Exercise, len(results)), Failed: results.Failed()}
	for i, result := range results {
		e := Exercise{
			ID:         result.Exercise.ID,
			Name:       result.Exercise.Name,
			Benchmarks: result.Summaries,
		}
		if result.Err != nil {
			e.Error = result.Err.Error()
		}
		doc.Exercises[i] = e
	}
	return doc
}

// JSON writes results to w as indented JSON.
func JSON(w io.Writer, results suite.Results) error {
	data, err := sonic.ConfigStd.MarshalIndent(NewDocument(results), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
