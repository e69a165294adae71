package cpustat

import (
	"errors"
	"testing"
	"time"
)

// scriptSource replays a fixed sequence of snapshots.
type scriptSource struct {
	snaps    []CounterSnapshot
	errs     []error
	captures int
}

func (s *scriptSource) Name() string { return "script" }

func (s *scriptSource) Capture() (CounterSnapshot, error) {
	i := s.captures
	s.captures++
	if i < len(s.errs) && s.errs[i] != nil {
		return CounterSnapshot{}, s.errs[i]
	}
	if i >= len(s.snaps) {
		return CounterSnapshot{}, errors.New("script exhausted")
	}
	return s.snaps[i], nil
}

func newTestSampler(source Source) (*Sampler, *time.Duration) {
	s := NewSampler(source)
	var slept time.Duration
	s.sleep = func(d time.Duration) { slept = d }
	return s, &slept
}

func TestSampleDerivesFromSnapshotPair(t *testing.T) {
	source := &scriptSource{snaps: []CounterSnapshot{
		{User: 100, System: 50, Idle: 800, IOWait: 50},
		{User: 150, System: 100, Idle: 850, IOWait: 60},
	}}
	sampler, slept := newTestSampler(source)

	sample, err := sampler.Sample(time.Second)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if !almost(sample.Busy, 68.75) {
		t.Errorf("Busy = %v, want 68.75", sample.Busy)
	}
	if sample.Origin != "script" {
		t.Errorf("Origin = %q, want %q", sample.Origin, "script")
	}
	if *slept != time.Second {
		t.Errorf("slept %v, want 1s", *slept)
	}
	if source.captures != 2 {
		t.Errorf("captures = %d, want 2", source.captures)
	}
}

func TestSampleNeverReturnsEarly(t *testing.T) {
	source := &scriptSource{snaps: []CounterSnapshot{
		{User: 10, Idle: 100},
		{User: 20, Idle: 120},
	}}
	sampler := NewSampler(source)

	const interval = 30 * time.Millisecond
	start := time.Now()
	if _, err := sampler.Sample(interval); err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < interval {
		t.Errorf("Sample() returned after %v, want at least %v", elapsed, interval)
	}
}

func TestSampleSingleAttemptOnRegression(t *testing.T) {
	source := &scriptSource{snaps: []CounterSnapshot{
		{User: 100, Idle: 800},
		{User: 90, Idle: 810},
	}}
	sampler, _ := newTestSampler(source)

	_, err := sampler.Sample(time.Second)
	if !errors.Is(err, ErrInconsistentCounters) {
		t.Fatalf("Sample() error = %v, want ErrInconsistentCounters", err)
	}
	if source.captures != 2 {
		t.Errorf("captures = %d, want 2 (no hidden retry)", source.captures)
	}
}

func TestSampleFreshPairRecoversAfterRegression(t *testing.T) {
	source := &scriptSource{snaps: []CounterSnapshot{
		{User: 100, Idle: 800},
		{User: 90, Idle: 810},
		{User: 90, Idle: 810},
		{User: 140, Idle: 860},
	}}
	sampler, _ := newTestSampler(source)

	if _, err := sampler.Sample(time.Second); !errors.Is(err, ErrInconsistentCounters) {
		t.Fatalf("first Sample() error = %v, want ErrInconsistentCounters", err)
	}

	sample, err := sampler.Sample(time.Second)
	if err != nil {
		t.Fatalf("second Sample() error = %v", err)
	}
	if !almost(sample.Busy, 50) {
		t.Errorf("Busy = %v, want 50", sample.Busy)
	}
}

func TestSamplePropagatesUnavailable(t *testing.T) {
	source := &scriptSource{errs: []error{ErrUnavailable}}
	sampler, _ := newTestSampler(source)

	_, err := sampler.Sample(time.Second)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Sample() error = %v, want ErrUnavailable", err)
	}
}

func TestFallbackOnlySamplerEstimates(t *testing.T) {
	sampler := NewSampler(nil)
	sampler.estimate = func() (float64, error) { return 42.0, nil }

	sample, err := sampler.Sample(time.Second)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if !almost(sample.Busy, 42.0) {
		t.Errorf("Busy = %v, want 42.0", sample.Busy)
	}
	if sample.Detail != nil {
		t.Errorf("Detail = %+v, want nil (breakdown unknown, not zero)", *sample.Detail)
	}
	if sampler.Primary() {
		t.Error("Primary() = true, want false")
	}
}

func TestDetectPrefersWorkingSource(t *testing.T) {
	good := &scriptSource{snaps: []CounterSnapshot{{User: 1, Idle: 9}}}
	if s := detectSource(good, nil); !s.Primary() {
		t.Error("detectSource(working) returned fallback sampler")
	}

	bad := &scriptSource{errs: []error{ErrUnavailable}}
	if s := detectSource(bad, nil); s.Primary() {
		t.Error("detectSource(broken) kept primary sampler")
	}
}
