// Package disk reports filesystem capacity, inode usage and disk activity.
package disk

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// statfs is swapped out in tests.
var statfs = unix.Statfs

// Collector gathers disk metrics.
type Collector struct {
	mountsPath    string
	diskStatsPath string
	fileNRPath    string
	sysBlockPath  string
}

// New creates a disk collector reading the standard system locations.
func New() *Collector {
	return &Collector{
		mountsPath:    "/proc/mounts",
		diskStatsPath: "/proc/diskstats",
		fileNRPath:    "/proc/sys/fs/file-nr",
		sysBlockPath:  "/sys/block",
	}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Disk"
}

// mount is one real filesystem from the mount table.
type mount struct {
	device string
	point  string
	fstype string
}

// capacityRows returns usage and inode rows for each mount via statfs.
func capacityRows(thresholds metric.Thresholds, mounts []mount) []metric.Metric {
	rows := make([]metric.Metric, 0, len(mounts)*2)

	for _, m := range mounts {
		var stat unix.Statfs_t
		if err := statfs(m.point, &stat); err != nil {
			continue
		}

		blockSize := uint64(stat.Bsize)
		total := stat.Blocks * blockSize
		if total == 0 {
			continue
		}
		used := total - stat.Bfree*blockSize
		usedPct := (float64(used) / float64(total)) * 100

		rows = append(rows, metric.Metric{
			Section:  "Disk",
			Name:     fmt.Sprintf("usage (%s)", m.point),
			Value:    fmt.Sprintf("%s / %s (%.1f%%)", humanize.IBytes(used), humanize.IBytes(total), usedPct),
			RawValue: usedPct,
			Status:   thresholds.EvaluateUtilization(usedPct),
			Detail:   fmt.Sprintf("%s on %s", m.fstype, m.device),
			Source:   "statfs",
		})

		if stat.Files == 0 {
			continue
		}
		usedInodes := stat.Files - stat.Ffree
		inodePct := (float64(usedInodes) / float64(stat.Files)) * 100
		inodeRow := metric.Metric{
			Section:  "Disk",
			Name:     fmt.Sprintf("inodes (%s)", m.point),
			Value:    fmt.Sprintf("%.1f%%", inodePct),
			RawValue: inodePct,
			Status:   thresholds.EvaluateUtilization(inodePct),
			Detail:   fmt.Sprintf("%d/%d used", usedInodes, stat.Files),
			Source:   "statfs",
		}
		if stat.Ffree == 0 {
			inodeRow.Value = "0 free inodes"
			inodeRow.Status = metric.StatusError
		}
		rows = append(rows, inodeRow)
	}

	return rows
}
