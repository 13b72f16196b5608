package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/exascience/parbench/bench"
	"github.com/exascience/parbench/suite"
)

func sampleResults() suite.Results {
	pass := bench.PassSummary{
		Elapsed:   40 * time.Millisecond,
		Succeeded: 1,
		Failed:    1,
		Stats:     bench.NewDurationStats([]time.Duration{time.Millisecond, 3 * time.Millisecond}),
		Details: []bench.Detail{
			{Index: 0, Value: "found at position 3", Duration: time.Millisecond},
			{Index: 1, Error: "item 1: broken", Duration: 3 * time.Millisecond},
		},
	}
	return suite.Results{
		{
			Exercise:  suite.Exercise{ID: 3, Name: "linear search"},
			Summaries: []bench.Summary{{
				Name: "linear search for 42", Items: 2, Workers: 2, Mode: "cpu", Schedule: "dynamic",
				Sequential: pass, Parallel: pass, Speedup: 1.6, Efficiency: 0.8, Compared: true,
			}},
		},
		{
			Exercise:  suite.Exercise{ID: 2, Name: "vector sum"},
			Summaries: []bench.Summary{{
				Name: "vector sum", Items: 2, Workers: 2, Mode: "cpu", Schedule: "static",
				Sequential: pass, Parallel: pass, Compared: true,
				Mismatches: []bench.Mismatch{{Index: 0, Reason: "sequential 1, parallel 2"}},
			}},
		},
		{
			Exercise: suite.Exercise{ID: 4, Name: "fall time simulation"},
			Err:      errors.New("pool start: invalid number of workers: -1"),
		},
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf).Report(sampleResults())
	out := buf.String()
	for _, want := range []string{
		"PASS: linear search for 42",
		"Speedup:    1.60x (efficiency 80%)",
		"Sequential: 40.00ms total, 1 ok, 1 failed, per item avg 2.00ms",
		"[0] found at position 3 (1.00ms)",
		"[1] error: item 1: broken (3.00ms)",
		"DIFF: vector sum",
		"Mismatch:   item 0: sequential 1, parallel 2",
		"FAIL: fall time simulation",
		"Error: pool start: invalid number of workers: -1",
		"Total: 3  Success: 2  Failed: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}
}

func TestReportWidth(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.Width = 20
	r.Report(sampleResults())
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "    [") && len([]rune(line)) > 20 {
			t.Errorf("detail line too long: %q", line)
		}
	}

	buf.Reset()
	r.Details = false
	r.Report(sampleResults())
	if strings.Contains(buf.String(), "    [0]") {
		t.Error("details should be omitted")
	}
}

func TestTruncate(t *testing.T) {
	for _, test := range []struct {
		in    string
		width int
		want  string
	}{
		{"hello world", 0, "hello world"},
		{"hello world", 11, "hello world"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
	} {
		if got := truncate(test.in, test.width); got != test.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", test.in, test.width, got, test.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	for d, want := range map[time.Duration]string{
		500 * time.Nanosecond:   "500ns",
		1500 * time.Nanosecond:  "1.50µs",
		2500 * time.Microsecond: "2.50ms",
		3 * time.Second:         "3.00s",
	} {
		if got := formatDuration(d); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleResults()); err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := sonic.ConfigStd.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Failed != 1 || len(doc.Exercises) != 3 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if e := doc.Exercises[2]; e.ID != 4 || e.Error == "" || len(e.Benchmarks) != 0 {
		t.Errorf("unexpected failed exercise %+v", e)
	}
	b := doc.Exercises[0].Benchmarks[0]
	if b.Name != "linear search for 42" || b.Speedup != 1.6 || b.Parallel.Details[1].Error != "item 1: broken" {
		t.Errorf("unexpected benchmark %+v", b)
	}
	if len(doc.Exercises[1].Benchmarks[0].Mismatches) != 1 {
		t.Errorf("mismatches lost: %+v", doc.Exercises[1])
	}
	if !strings.Contains(buf.String(), `"reason": "sequential 1, parallel 2"`) {
		t.Errorf("unexpected encoding:\n%s", buf.String())
	}
}
