package debug

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// slowCollector sleeps so the wrapper has something to measure.
type slowCollector struct {
	delay time.Duration
	err   error
}

func (s *slowCollector) Name() string { return "Slow" }

func (s *slowCollector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	time.Sleep(s.delay)
	if s.err != nil {
		return nil, s.err
	}
	return []metric.Metric{
		{Section: "Slow", Name: "value", Value: "1", RawValue: 1, Status: metric.StatusOK},
	}, nil
}

func TestTimedCollector(t *testing.T) {
	inner := &slowCollector{delay: 10 * time.Millisecond}
	timed := NewTimedCollector(inner)

	if timed.Name() != "Slow" {
		t.Errorf("Name() = %q, want Slow", timed.Name())
	}

	rows, err := timed.Collect(metric.DefaultThresholds())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Collect() returned %d rows, want 1", len(rows))
	}
	if timed.Timing.Name != "Slow" {
		t.Errorf("Timing name = %q, want Slow", timed.Timing.Name)
	}
	if timed.Timing.Duration < 10*time.Millisecond {
		t.Errorf("Timing duration = %v, want at least the 10ms delay", timed.Timing.Duration)
	}
}

func TestTimedCollectorPropagatesError(t *testing.T) {
	wantErr := errors.New("collector broke")
	timed := NewTimedCollector(&slowCollector{err: wantErr})

	_, err := timed.Collect(metric.DefaultThresholds())
	if !errors.Is(err, wantErr) {
		t.Errorf("Collect() error = %v, want %v", err, wantErr)
	}
	if timed.Timing.Name != "Slow" {
		t.Error("Timing should be recorded even when the collector fails")
	}
}

func TestTimingReport(t *testing.T) {
	timings := []CollectorTiming{
		{Name: "CPU", Duration: 1 * time.Second},
		{Name: "Memory", Duration: 2 * time.Millisecond},
	}

	var buf bytes.Buffer
	TimingReport(&buf, timings)

	out := buf.String()
	for _, want := range []string{"Collector Timing Report", "CPU", "Memory", "TOTAL", "1.002s"} {
		if !strings.Contains(out, want) {
			t.Errorf("TimingReport output missing %q", want)
		}
	}
}

func TestDumpRawMetrics(t *testing.T) {
	metrics := []metric.Metric{
		{Section: "CPU", Name: "utilization", Value: "68.8%", RawValue: 68.75, Source: "/proc/stat"},
	}

	var buf bytes.Buffer
	DumpRawMetrics(&buf, metrics)

	out := buf.String()
	for _, want := range []string{"Raw Metrics Dump", "CPU", "utilization", "68.7500", "/proc/stat"} {
		if !strings.Contains(out, want) {
			t.Errorf("DumpRawMetrics output missing %q", want)
		}
	}
}
