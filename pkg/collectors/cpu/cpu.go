// Package cpu reports aggregate CPU utilization sampled over a short interval.
package cpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/rowjay007/server-stats/pkg/cpustat"
	"github.com/rowjay007/server-stats/pkg/metric"
)

// DefaultInterval separates the two counter snapshots of a sample.
const DefaultInterval = time.Second

// Sampler is the slice of cpustat the collector needs.
type Sampler interface {
	Sample(interval time.Duration) (cpustat.UtilizationSample, error)
	Estimate() (cpustat.UtilizationSample, error)
	Primary() bool
}

// Collector samples CPU utilization through a cpustat sampler.
type Collector struct {
	sampler  Sampler
	interval time.Duration
}

// New creates a CPU collector. A non-positive interval falls back to
// DefaultInterval.
func New(sampler Sampler, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Collector{sampler: sampler, interval: interval}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "CPU"
}

// Interval returns the configured sampling interval.
func (c *Collector) Interval() time.Duration {
	return c.interval
}

// Collect samples utilization once. An inconsistent snapshot pair gets
// one retry with a fresh pair, an unreadable counter source degrades to
// the utility estimate, and any remaining failure becomes an unknown
// row instead of an error.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	sample, err := c.sampler.Sample(c.interval)
	if errors.Is(err, cpustat.ErrInconsistentCounters) {
		sample, err = c.sampler.Sample(c.interval)
	}
	if err != nil && errors.Is(err, cpustat.ErrUnavailable) && c.sampler.Primary() {
		sample, err = c.sampler.Estimate()
	}
	if err != nil {
		return []metric.Metric{{
			Section: "CPU",
			Name:    "utilization",
			Value:   "unknown",
			Status:  metric.StatusUnknown,
			Detail:  err.Error(),
		}}, nil
	}

	return c.rows(sample, thresholds), nil
}

func (c *Collector) rows(sample cpustat.UtilizationSample, thresholds metric.Thresholds) []metric.Metric {
	detail := fmt.Sprintf("busy over %v sample", sample.Interval)
	if sample.Detail == nil {
		detail = "one-shot utility estimate"
	}

	rows := make([]metric.Metric, 0, 5)
	rows = append(rows, metric.Metric{
		Section:  "CPU",
		Name:     "utilization",
		Value:    fmt.Sprintf("%.1f%%", sample.Busy),
		RawValue: sample.Busy,
		Status:   thresholds.EvaluateUtilization(sample.Busy),
		Detail:   detail,
		Source:   sample.Origin,
	})

	if sample.Detail == nil {
		rows = append(rows, metric.Metric{
			Section: "CPU",
			Name:    "breakdown",
			Value:   "unknown",
			Status:  metric.StatusUnknown,
			Detail:  "utility estimate carries no per-category shares",
			Source:  sample.Origin,
		})
		return rows
	}

	d := sample.Detail
	rows = append(rows,
		metric.Metric{
			Section:  "CPU",
			Name:     "user",
			Value:    fmt.Sprintf("%.1f%%", d.User),
			RawValue: d.User,
			Status:   metric.StatusOK,
			Source:   sample.Origin,
		},
		metric.Metric{
			Section:  "CPU",
			Name:     "system",
			Value:    fmt.Sprintf("%.1f%%", d.System),
			RawValue: d.System,
			Status:   metric.StatusOK,
			Source:   sample.Origin,
		},
		metric.Metric{
			Section:  "CPU",
			Name:     "iowait",
			Value:    fmt.Sprintf("%.1f%%", d.IOWait),
			RawValue: d.IOWait,
			Status:   metric.StatusOK,
			Source:   sample.Origin,
		},
	)
	if d.Steal > 0 {
		rows = append(rows, metric.Metric{
			Section:  "CPU",
			Name:     "steal",
			Value:    fmt.Sprintf("%.1f%%", d.Steal),
			RawValue: d.Steal,
			Status:   metric.StatusOK,
			Detail:   "time taken by the hypervisor",
			Source:   sample.Origin,
		})
	}

	return rows
}
