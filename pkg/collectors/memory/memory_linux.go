//go:build linux

package memory

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// Collect gathers memory metrics on Linux.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	info, err := readMemInfo(c.memInfoPath)
	if err != nil {
		return nil, err
	}

	rows := make([]metric.Metric, 0, 7)

	total := info["MemTotal"] * 1024
	rows = append(rows, metric.Metric{
		Section:  "Memory",
		Name:     "total",
		Value:    humanize.IBytes(total),
		RawValue: float64(total),
		Status:   metric.StatusOK,
		Source:   c.memInfoPath,
	})

	util, usedBytes := calculateUtilization(info)
	rows = append(rows, metric.Metric{
		Section:  "Memory",
		Name:     "used",
		Value:    fmt.Sprintf("%s (%.1f%%)", humanize.IBytes(usedBytes), util),
		RawValue: util,
		Status:   thresholds.EvaluateUtilization(util),
		Detail:   "total minus MemAvailable",
		Source:   c.memInfoPath,
	})

	available := availableBytes(info)
	rows = append(rows, metric.Metric{
		Section:  "Memory",
		Name:     "available",
		Value:    humanize.IBytes(available),
		RawValue: float64(available),
		Status:   metric.StatusOK,
		Source:   c.memInfoPath,
	})

	swapPct, swapValue := swapUsage(info)
	swapStatus := metric.StatusOK
	if swapPct > 0 {
		swapStatus = metric.StatusWarning
	}
	rows = append(rows, metric.Metric{
		Section:  "Memory",
		Name:     "swap",
		Value:    swapValue,
		RawValue: swapPct,
		Status:   swapStatus,
		Detail:   "swap in use indicates memory pressure",
		Source:   c.memInfoPath,
	})

	if vmstat, err := readVMStat(c.vmStatPath); err == nil {
		faults := vmstat["pgmajfault"]
		rows = append(rows, metric.Metric{
			Section:  "Memory",
			Name:     "paging",
			Value:    fmt.Sprintf("%s major faults", humanize.Comma(int64(faults))),
			RawValue: float64(faults),
			Status:   metric.StatusOK,
			Detail: fmt.Sprintf("swap in %s, swap out %s since boot",
				humanize.Comma(int64(vmstat["pswpin"])), humanize.Comma(int64(vmstat["pswpout"]))),
			Source: c.vmStatPath,
		})
	}

	if dirtyPct, ok := dirtyRatio(info); ok {
		dirtyStatus := metric.StatusOK
		if dirtyPct > 10 {
			dirtyStatus = metric.StatusWarning
		}
		if dirtyPct > 30 {
			dirtyStatus = metric.StatusError
		}
		rows = append(rows, metric.Metric{
			Section:  "Memory",
			Name:     "dirty pages",
			Value:    fmt.Sprintf("%.1f%%", dirtyPct),
			RawValue: dirtyPct,
			Status:   dirtyStatus,
			Detail:   "dirty share of total memory awaiting writeback",
			Source:   c.memInfoPath,
		})
	}

	oomCount := c.countOOMKills()
	rows = append(rows, metric.Metric{
		Section:  "Memory",
		Name:     "oom kills",
		Value:    fmt.Sprintf("%d", oomCount),
		RawValue: float64(oomCount),
		Status:   metric.EvaluateErrors(oomCount),
		Detail:   "OOM killer invocations in the kernel log",
		Source:   c.kernLogPath,
	})

	return rows, nil
}

// readMemInfo parses a meminfo file into a map of kB values.
func readMemInfo(path string) (map[string]uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info := make(map[string]uint64)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		key := strings.TrimSuffix(fields[0], ":")
		value, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		info[key] = value
	}

	return info, scanner.Err()
}

// availableBytes prefers MemAvailable (Linux 3.14+) and falls back to
// free plus reclaimable caches.
func availableBytes(info map[string]uint64) uint64 {
	available, ok := info["MemAvailable"]
	if !ok {
		available = info["MemFree"] + info["Buffers"] + info["Cached"]
	}
	return available * 1024
}

// calculateUtilization computes the used percentage and byte count.
func calculateUtilization(info map[string]uint64) (float64, uint64) {
	total := info["MemTotal"] * 1024
	if total == 0 {
		return 0, 0
	}

	used := total - availableBytes(info)
	return (float64(used) / float64(total)) * 100, used
}

// swapUsage computes swap utilization and its display form.
func swapUsage(info map[string]uint64) (float64, string) {
	swapTotal := info["SwapTotal"] * 1024
	swapFree := info["SwapFree"] * 1024

	if swapTotal == 0 {
		return 0, "0 B (no swap)"
	}

	swapUsed := swapTotal - swapFree
	swapPct := (float64(swapUsed) / float64(swapTotal)) * 100

	return swapPct, fmt.Sprintf("%s / %s (%.1f%%)", humanize.IBytes(swapUsed), humanize.IBytes(swapTotal), swapPct)
}

// readVMStat parses the counter pairs of a vmstat file.
func readVMStat(path string) (map[string]uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stats := make(map[string]uint64)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 {
			val, _ := strconv.ParseUint(fields[1], 10, 64)
			stats[fields[0]] = val
		}
	}
	return stats, scanner.Err()
}

// dirtyRatio computes the dirty page share of total memory.
func dirtyRatio(info map[string]uint64) (float64, bool) {
	total := info["MemTotal"]
	if total == 0 {
		return 0, false
	}
	return (float64(info["Dirty"]) / float64(total)) * 100, true
}

// countOOMKills scans the kernel log for OOM killer lines, best effort.
func (c *Collector) countOOMKills() int64 {
	file, err := os.Open(c.kernLogPath)
	if err != nil {
		return 0
	}
	defer file.Close()

	var count int64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())
		if strings.Contains(line, "oom") || strings.Contains(line, "out of memory") {
			count++
		}
	}

	return count
}
