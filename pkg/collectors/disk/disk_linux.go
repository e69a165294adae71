//go:build linux

package disk

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// diskStats holds cumulative activity counters for one block device.
type diskStats struct {
	name   string
	reads  uint64
	writes uint64
}

// Collect gathers disk metrics on Linux.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	rows := capacityRows(thresholds, readMounts(c.mountsPath))

	for _, s := range c.readDiskStats() {
		rows = append(rows, metric.Metric{
			Section:  "Disk",
			Name:     fmt.Sprintf("io (%s)", s.name),
			Value:    fmt.Sprintf("%s reads, %s writes", humanize.Comma(int64(s.reads)), humanize.Comma(int64(s.writes))),
			RawValue: float64(s.reads + s.writes),
			Status:   metric.StatusOK,
			Detail:   "completed requests since boot",
			Source:   c.diskStatsPath,
		})

		if errCount := c.ioErrors(s.name); errCount > 0 {
			rows = append(rows, metric.Metric{
				Section:  "Disk",
				Name:     fmt.Sprintf("io errors (%s)", s.name),
				Value:    fmt.Sprintf("%d", errCount),
				RawValue: float64(errCount),
				Status:   metric.EvaluateErrors(errCount),
				Source:   filepath.Join(c.sysBlockPath, s.name, "device", "ioerr_cnt"),
			})
		}
	}

	if fdPct, err := c.fdUtilization(); err == nil {
		rows = append(rows, metric.Metric{
			Section:  "Disk",
			Name:     "file descriptors",
			Value:    fmt.Sprintf("%.1f%%", fdPct),
			RawValue: fdPct,
			Status:   thresholds.EvaluateUtilization(fdPct),
			Detail:   "allocated of system maximum",
			Source:   c.fileNRPath,
		})
	}

	return rows, nil
}

// readMounts lists real filesystems, skipping virtual mounts and
// devices or mount points already seen.
func readMounts(path string) []mount {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var mounts []mount
	seenPoint := make(map[string]bool)
	seenDevice := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}

		m := mount{device: fields[0], point: fields[1], fstype: fields[2]}
		if virtualFS(m.fstype) {
			continue
		}
		if seenPoint[m.point] || seenDevice[m.device] {
			continue
		}
		seenPoint[m.point] = true
		seenDevice[m.device] = true
		mounts = append(mounts, m)
	}

	return mounts
}

func virtualFS(fstype string) bool {
	switch fstype {
	case "tmpfs", "devtmpfs", "sysfs", "proc", "devpts", "cgroup",
		"cgroup2", "securityfs", "debugfs", "tracefs", "configfs",
		"fusectl", "hugetlbfs", "mqueue", "pstore", "autofs",
		"overlay", "squashfs", "ramfs", "binfmt_misc":
		return true
	}
	return false
}

// readDiskStats lists whole-disk activity from a diskstats file,
// skipping partitions and pseudo devices.
func (c *Collector) readDiskStats() []diskStats {
	file, err := os.Open(c.diskStatsPath)
	if err != nil {
		return nil
	}
	defer file.Close()

	var stats []diskStats
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 14 {
			continue
		}

		name := fields[2]
		if isPartition(name) {
			continue
		}

		s := diskStats{name: name}
		s.reads, _ = strconv.ParseUint(fields[3], 10, 64)
		s.writes, _ = strconv.ParseUint(fields[7], 10, 64)
		stats = append(stats, s)
	}

	return stats
}

// isPartition reports whether the device name looks like a partition or
// pseudo device rather than a whole disk.
func isPartition(name string) bool {
	if len(name) == 0 {
		return false
	}

	// sdXN, hdXN, vdXN
	if (strings.HasPrefix(name, "sd") || strings.HasPrefix(name, "hd") || strings.HasPrefix(name, "vd")) && len(name) > 3 {
		lastChar := name[len(name)-1]
		return lastChar >= '0' && lastChar <= '9'
	}

	// nvmeXnYpZ
	if strings.HasPrefix(name, "nvme") && strings.Contains(name, "p") {
		return true
	}

	// mmcblkXpY
	if strings.HasPrefix(name, "mmcblk") && strings.Contains(name, "p") {
		return true
	}

	if strings.HasPrefix(name, "loop") {
		return true
	}

	if strings.HasPrefix(name, "ram") {
		return true
	}

	return false
}

// ioErrors reads the device error count from sysfs, best effort.
func (c *Collector) ioErrors(diskName string) int64 {
	data, err := os.ReadFile(filepath.Join(c.sysBlockPath, diskName, "device", "ioerr_cnt"))
	if err != nil {
		return 0
	}

	// The counter is 0x-prefixed hex on SCSI devices.
	text := strings.TrimSpace(string(data))
	var count int64
	if strings.HasPrefix(text, "0x") {
		count, _ = strconv.ParseInt(strings.TrimPrefix(text, "0x"), 16, 64)
	} else {
		count, _ = strconv.ParseInt(text, 10, 64)
	}
	return count
}

// fdUtilization computes file descriptor usage from a file-nr file.
func (c *Collector) fdUtilization() (float64, error) {
	data, err := os.ReadFile(c.fileNRPath)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return 0, fmt.Errorf("unexpected file-nr format")
	}
	allocated, _ := strconv.ParseFloat(fields[0], 64)
	max, _ := strconv.ParseFloat(fields[2], 64)
	if max == 0 {
		return 0, fmt.Errorf("max FDs is 0")
	}
	return (allocated / max) * 100, nil
}
