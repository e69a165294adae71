//go:build linux

package host

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// Collect gathers host identity metrics on Linux.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	rows := make([]metric.Metric, 0, 6)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	rows = append(rows, metric.Metric{
		Section: "Host",
		Name:    "hostname",
		Value:   hostname,
		Status:  metric.StatusOK,
		Source:  "gethostname",
	})

	if osName, err := readOSRelease(c.osReleasePath); err == nil {
		rows = append(rows, metric.Metric{
			Section: "Host",
			Name:    "os",
			Value:   osName,
			Status:  metric.StatusOK,
			Source:  c.osReleasePath,
		})
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		rows = append(rows, metric.Metric{
			Section: "Host",
			Name:    "kernel",
			Value:   fmt.Sprintf("%s %s", unix.ByteSliceToString(uts.Release[:]), unix.ByteSliceToString(uts.Machine[:])),
			Status:  metric.StatusOK,
			Source:  "uname",
		})
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err == nil {
		up := time.Duration(info.Uptime) * time.Second
		rows = append(rows, metric.Metric{
			Section:  "Host",
			Name:     "uptime",
			Value:    formatUptime(up),
			RawValue: up.Seconds(),
			Status:   metric.StatusOK,
			Source:   "sysinfo",
		})
	}

	if load, err := readLoadavg(c.loadavgPath); err == nil {
		cpus := runtime.NumCPU()
		rows = append(rows, metric.Metric{
			Section:  "Host",
			Name:     "load average",
			Value:    fmt.Sprintf("%.2f %.2f %.2f", load.one, load.five, load.fifteen),
			RawValue: load.one,
			Status:   metric.EvaluateSaturation(load.one, float64(cpus)),
			Detail:   fmt.Sprintf("1/5/15 min over %d CPUs, %s runnable", cpus, load.runnable),
			Source:   c.loadavgPath,
		})
	}

	if model, count, err := readCPUInfo(c.cpuinfoPath); err == nil {
		cores := "cores"
		if count == 1 {
			cores = "core"
		}
		rows = append(rows, metric.Metric{
			Section:  "Host",
			Name:     "cpu",
			Value:    fmt.Sprintf("%s (%d %s)", model, count, cores),
			RawValue: float64(count),
			Status:   metric.StatusOK,
			Source:   c.cpuinfoPath,
		})
	}

	return rows, nil
}

// readOSRelease returns the PRETTY_NAME of an os-release file, falling
// back to NAME when the pretty form is absent.
func readOSRelease(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var name string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch key {
		case "PRETTY_NAME":
			return value, nil
		case "NAME":
			name = value
		}
	}
	if name == "" {
		return "", fmt.Errorf("no NAME in %s", path)
	}
	return name, scanner.Err()
}

type loadavg struct {
	one      float64
	five     float64
	fifteen  float64
	runnable string
}

// readLoadavg parses the three load averages and the runnable/total field.
func readLoadavg(path string) (loadavg, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return loadavg{}, err
	}

	fields := strings.Fields(string(data))
	if len(fields) < 4 {
		return loadavg{}, fmt.Errorf("unexpected loadavg format %q", string(data))
	}

	var load loadavg
	if load.one, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return loadavg{}, err
	}
	if load.five, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return loadavg{}, err
	}
	if load.fifteen, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return loadavg{}, err
	}
	load.runnable = fields[3]
	return load, nil
}

// readCPUInfo returns the first model name and the logical CPU count.
func readCPUInfo(path string) (string, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	var model string
	var count int
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "processor") {
			count++
		}
		if model == "" && strings.HasPrefix(line, "model name") {
			if _, value, ok := strings.Cut(line, ":"); ok {
				model = strings.TrimSpace(value)
			}
		}
	}
	if count == 0 {
		return "", 0, fmt.Errorf("no processors in %s", path)
	}
	if model == "" {
		model = "unknown model"
	}
	return model, count, scanner.Err()
}

// formatUptime renders a duration the way uptime(1) does.
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days == 1:
		return fmt.Sprintf("up 1 day, %d:%02d", hours, minutes)
	case days > 1:
		return fmt.Sprintf("up %d days, %d:%02d", days, hours, minutes)
	default:
		return fmt.Sprintf("up %d:%02d", hours, minutes)
	}
}
