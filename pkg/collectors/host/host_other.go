//go:build !linux

package host

import (
	"os"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// Collect reports what little identity information exists off Linux.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return []metric.Metric{
		{
			Section: "Host",
			Name:    "hostname",
			Value:   hostname,
			Status:  metric.StatusOK,
			Source:  "gethostname",
		},
		{
			Section: "Host",
			Name:    "details",
			Value:   "unknown",
			Status:  metric.StatusUnknown,
			Detail:  "host details are collected from procfs, available on Linux only",
		},
	}, nil
}
