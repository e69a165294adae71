//go:build linux

package crosscheck

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// platformMemorySources adds Linux-native readings next to the portable ones.
func platformMemorySources() []Source {
	var sources []Source

	if util, err := meminfoUtilization("/proc/meminfo"); err == nil {
		sources = append(sources, Source{
			Name:  "/proc/meminfo",
			Value: util,
			Unit:  "%",
		})
	}

	if util, err := sysinfoUtilization(); err == nil {
		sources = append(sources, Source{
			Name:    "sysinfo",
			Value:   util,
			Unit:    "%",
			RawData: "used excludes buffers, counts page cache",
		})
	}

	return sources
}

func meminfoUtilization(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
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
		val, _ := strconv.ParseUint(fields[1], 10, 64)
		info[key] = val
	}

	total := info["MemTotal"]
	if total == 0 {
		return 0, fmt.Errorf("MemTotal is 0")
	}

	available, ok := info["MemAvailable"]
	if !ok {
		available = info["MemFree"] + info["Buffers"] + info["Cached"]
	}
	used := total - available
	return (float64(used) / float64(total)) * 100, nil
}

func sysinfoUtilization() (float64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	unit := uint64(info.Unit)
	total := uint64(info.Totalram) * unit
	free := uint64(info.Freeram) * unit
	buffers := uint64(info.Bufferram) * unit

	if total == 0 {
		return 0, fmt.Errorf("total RAM is 0")
	}
	used := total - free - buffers
	return (float64(used) / float64(total)) * 100, nil
}
