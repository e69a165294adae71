//go:build !linux

package memory

import "github.com/rowjay007/server-stats/pkg/metric"

// Collect degrades to a single unknown row off Linux.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	return []metric.Metric{{
		Section: "Memory",
		Name:    "used",
		Value:   "unknown",
		Status:  metric.StatusUnknown,
		Detail:  "memory metrics are read from /proc/meminfo, available on Linux only",
	}}, nil
}
