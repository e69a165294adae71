//go:build !linux

package network

import (
	"github.com/rowjay007/server-stats/pkg/metric"
)

// Collect reports that per-interface counters need Linux procfs.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	return []metric.Metric{
		{
			Section: "Network",
			Name:    "interfaces",
			Value:   "unknown",
			Status:  metric.StatusUnknown,
			Detail:  "interface counters require /proc/net/dev (Linux only)",
		},
	}, nil
}
