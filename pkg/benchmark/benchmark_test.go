package benchmark

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// countingCollector records how often Collect is called.
type countingCollector struct {
	calls int
	value float64
}

func (c *countingCollector) Name() string { return "Counting" }

func (c *countingCollector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	c.calls++
	c.value += 1.0
	return []metric.Metric{
		{Section: "Counting", Name: "value", RawValue: c.value, Status: metric.StatusOK},
	}, nil
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{
		1 * time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond,
		4 * time.Millisecond, 5 * time.Millisecond, 6 * time.Millisecond,
		7 * time.Millisecond, 8 * time.Millisecond, 9 * time.Millisecond,
		10 * time.Millisecond,
	}

	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0.50, 5 * time.Millisecond},
		{0.95, 10 * time.Millisecond},
		{0.99, 10 * time.Millisecond},
		{0.10, 1 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %v, want 0", got)
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"constant", []float64{5, 5, 5, 5}, 0},
		{"spread", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2.0},
		{"too few", []float64{42}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stddev(tt.values); math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("stddev(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	col := &countingCollector{}
	opts := Options{Iterations: 5, Warmup: 2}

	results := Run([]metric.Collector{col}, metric.DefaultThresholds(), opts)

	if col.calls != 7 {
		t.Errorf("Collect called %d times, want 7 (2 warmup + 5 iterations)", col.calls)
	}
	if len(results) != 1 {
		t.Fatalf("Run() returned %d results, want 1", len(results))
	}

	r := results[0]
	if r.Collector != "Counting" {
		t.Errorf("Result collector = %q, want Counting", r.Collector)
	}
	if len(r.Latencies) != 5 {
		t.Errorf("Result has %d latencies, want 5", len(r.Latencies))
	}
	if r.P50 > r.P95 || r.P95 > r.P99 {
		t.Errorf("Percentiles not ordered: P50=%v P95=%v P99=%v", r.P50, r.P95, r.P99)
	}
	// Values 3..7 after warmup, stddev of {3,4,5,6,7} = sqrt(2)
	if math.Abs(r.ValueStdDev-math.Sqrt2) > 0.0001 {
		t.Errorf("ValueStdDev = %v, want sqrt(2)", r.ValueStdDev)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Iterations != 20 || opts.Warmup != 3 {
		t.Errorf("DefaultOptions() = %+v, want 20 iterations and 3 warmup", opts)
	}
}

func TestMeasureOverhead(t *testing.T) {
	overhead := MeasureOverhead()
	if overhead.AllocBytes == 0 {
		t.Error("AllocBytes should be nonzero in a running test binary")
	}
	if overhead.AllocCount == 0 {
		t.Error("AllocCount should be nonzero in a running test binary")
	}
}

func TestRenderResults(t *testing.T) {
	results := []Result{
		{
			Collector: "CPU",
			P50:       2 * time.Millisecond,
			P95:       4 * time.Millisecond,
			P99:       5 * time.Millisecond,
		},
	}
	overhead := Overhead{AllocBytes: 1048576, AllocCount: 1234, GCPauses: 2}

	var buf bytes.Buffer
	RenderResults(&buf, results, overhead)

	out := buf.String()
	for _, want := range []string{
		"Self-Benchmark Results",
		"CPU",
		"Tool Overhead",
		"1.0 MiB",
		"1,234",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderResults output missing %q", want)
		}
	}
}
