//go:build !linux

package process

import "github.com/rowjay007/server-stats/pkg/metric"

// Collect degrades to a single unknown row off Linux.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	return []metric.Metric{{
		Section: "Processes",
		Name:    "tasks",
		Value:   "unknown",
		Status:  metric.StatusUnknown,
		Detail:  "process metrics are read from /proc/[pid]/stat, available on Linux only",
	}}, nil
}
