// Package cpustat samples the kernel's cumulative CPU time counters and
// derives utilization percentages over a fixed interval.
package cpustat

import (
	"errors"
	"time"
)

var (
	// ErrUnavailable means the counter source could not be read at all.
	ErrUnavailable = errors.New("cpu counter source unavailable")
	// ErrInconsistentCounters means a counter went backwards between the
	// two snapshots of a pair, usually after a counter reset.
	ErrInconsistentCounters = errors.New("cpu counters regressed between snapshots")
	// ErrParse means a summary line carried no recognizable percentage.
	ErrParse = errors.New("no usable cpu percentage in summary output")
)

// CounterSnapshot is one read of the aggregate CPU time counters, in
// kernel column order. Values are cumulative ticks since boot and only
// ever grow. Columns the kernel does not report stay zero.
type CounterSnapshot struct {
	User      uint64
	Nice      uint64
	System    uint64
	Idle      uint64
	IOWait    uint64
	IRQ       uint64
	SoftIRQ   uint64
	Steal     uint64
	Guest     uint64
	GuestNice uint64
}

// Total sums the eight primary categories. Guest and GuestNice are
// excluded because the kernel already folds guest time into User and Nice.
func (s CounterSnapshot) Total() uint64 {
	return s.User + s.Nice + s.System + s.Idle + s.IOWait + s.IRQ + s.SoftIRQ + s.Steal
}

// Breakdown is the percentage share of each primary category over one
// sampling interval. Shares sum to 100 up to rounding.
type Breakdown struct {
	User    float64 `json:"user"`
	Nice    float64 `json:"nice"`
	System  float64 `json:"system"`
	Idle    float64 `json:"idle"`
	IOWait  float64 `json:"iowait"`
	IRQ     float64 `json:"irq"`
	SoftIRQ float64 `json:"softirq"`
	Steal   float64 `json:"steal"`
}

// UtilizationSample is the derived utilization for one interval.
// A nil Detail means only the aggregate is known (fallback estimate);
// the per-category shares are unknown, not zero.
type UtilizationSample struct {
	Interval time.Duration `json:"interval_ns"`
	Busy     float64       `json:"busy"`
	Detail   *Breakdown    `json:"detail,omitempty"`
	Origin   string        `json:"origin"`
}

// Delta derives a sample from two snapshots taken interval apart.
// Busy is the complement of the idle share, so iowait and steal count
// as busy. A pair with no elapsed ticks yields all zeros. A pair where
// any counter regressed yields ErrInconsistentCounters; the caller may
// retry with a fresh pair.
func Delta(prev, curr CounterSnapshot, interval time.Duration) (UtilizationSample, error) {
	if regressed(prev, curr) {
		return UtilizationSample{}, ErrInconsistentCounters
	}

	dUser := curr.User - prev.User
	dNice := curr.Nice - prev.Nice
	dSystem := curr.System - prev.System
	dIdle := curr.Idle - prev.Idle
	dIOWait := curr.IOWait - prev.IOWait
	dIRQ := curr.IRQ - prev.IRQ
	dSoftIRQ := curr.SoftIRQ - prev.SoftIRQ
	dSteal := curr.Steal - prev.Steal

	total := dUser + dNice + dSystem + dIdle + dIOWait + dIRQ + dSoftIRQ + dSteal
	if total == 0 {
		// No ticks elapsed; every share is zero by definition.
		return UtilizationSample{Interval: interval, Detail: &Breakdown{}}, nil
	}

	ft := float64(total)
	detail := &Breakdown{
		User:    100 * float64(dUser) / ft,
		Nice:    100 * float64(dNice) / ft,
		System:  100 * float64(dSystem) / ft,
		Idle:    100 * float64(dIdle) / ft,
		IOWait:  100 * float64(dIOWait) / ft,
		IRQ:     100 * float64(dIRQ) / ft,
		SoftIRQ: 100 * float64(dSoftIRQ) / ft,
		Steal:   100 * float64(dSteal) / ft,
	}

	return UtilizationSample{
		Interval: interval,
		Busy:     100 - detail.Idle,
		Detail:   detail,
	}, nil
}

func regressed(prev, curr CounterSnapshot) bool {
	return curr.User < prev.User ||
		curr.Nice < prev.Nice ||
		curr.System < prev.System ||
		curr.Idle < prev.Idle ||
		curr.IOWait < prev.IOWait ||
		curr.IRQ < prev.IRQ ||
		curr.SoftIRQ < prev.SoftIRQ ||
		curr.Steal < prev.Steal ||
		curr.Guest < prev.Guest ||
		curr.GuestNice < prev.GuestNice
}
