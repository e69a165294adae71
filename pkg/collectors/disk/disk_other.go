//go:build !linux

package disk

import "github.com/rowjay007/server-stats/pkg/metric"

// Collect reports root filesystem capacity off Linux; the mount table
// and activity counters are procfs reads and stay unknown.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	rows := capacityRows(thresholds, []mount{{device: "rootfs", point: "/", fstype: "unknown"}})
	rows = append(rows, metric.Metric{
		Section: "Disk",
		Name:    "activity",
		Value:   "unknown",
		Status:  metric.StatusUnknown,
		Detail:  "disk activity is read from /proc/diskstats, available on Linux only",
	})
	return rows, nil
}
