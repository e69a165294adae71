//go:build linux

package network

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// timeWaitWarning is where TIME_WAIT buildup suggests port exhaustion.
const timeWaitWarning = 1000

// ifaceStats holds cumulative counters for one interface.
type ifaceStats struct {
	name      string
	rxBytes   uint64
	txBytes   uint64
	rxPackets uint64
	txPackets uint64
	rxErrors  uint64
	txErrors  uint64
	rxDropped uint64
	txDropped uint64
}

// connStates holds TCP socket counts by state.
type connStates struct {
	established int64
	listening   int64
	timeWait    int64
}

// Collect gathers network metrics on Linux.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	stats, err := readNetDevStats(c.netDevPath)
	if err != nil {
		return nil, err
	}

	rows := make([]metric.Metric, 0, len(stats)*3+1)
	for _, s := range stats {
		if s.name == "lo" {
			continue
		}

		state := c.operstate(s.name)
		linkStatus := metric.StatusOK
		if state == "down" {
			linkStatus = metric.StatusWarning
		}
		rows = append(rows, metric.Metric{
			Section: "Network",
			Name:    fmt.Sprintf("link (%s)", s.name),
			Value:   state,
			Status:  linkStatus,
			Source:  filepath.Join(c.classNetPath, s.name, "operstate"),
		})

		rows = append(rows, metric.Metric{
			Section:  "Network",
			Name:     fmt.Sprintf("rx (%s)", s.name),
			Value:    humanize.IBytes(s.rxBytes),
			RawValue: float64(s.rxBytes),
			Status:   metric.StatusOK,
			Detail:   fmt.Sprintf("%s packets since boot", humanize.Comma(int64(s.rxPackets))),
			Source:   c.netDevPath,
		})
		rows = append(rows, metric.Metric{
			Section:  "Network",
			Name:     fmt.Sprintf("tx (%s)", s.name),
			Value:    humanize.IBytes(s.txBytes),
			RawValue: float64(s.txBytes),
			Status:   metric.StatusOK,
			Detail:   fmt.Sprintf("%s packets since boot", humanize.Comma(int64(s.txPackets))),
			Source:   c.netDevPath,
		})

		errs := s.rxErrors + s.txErrors
		drops := s.rxDropped + s.txDropped
		rows = append(rows, metric.Metric{
			Section:  "Network",
			Name:     fmt.Sprintf("errors (%s)", s.name),
			Value:    fmt.Sprintf("%d errs, %d drops", errs, drops),
			RawValue: float64(errs + drops),
			Status:   metric.EvaluateErrors(int64(errs + drops)),
			Source:   c.netDevPath,
		})
	}

	states := c.readConnStates()
	connStatus := metric.StatusOK
	if states.timeWait > timeWaitWarning {
		connStatus = metric.StatusWarning
	}
	rows = append(rows, metric.Metric{
		Section:  "Network",
		Name:     "connections",
		Value:    fmt.Sprintf("%d established, %d listening, %d time-wait", states.established, states.listening, states.timeWait),
		RawValue: float64(states.established),
		Status:   connStatus,
		Source:   strings.Join(c.tcpPaths, " "),
	})

	return rows, nil
}

// readNetDevStats parses interface counters, sorted by interface name.
func readNetDevStats(path string) ([]ifaceStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var stats []ifaceStats
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		// Two header lines.
		if lineNum <= 2 {
			continue
		}

		line := scanner.Text()
		name, counters, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		fields := strings.Fields(counters)
		if len(fields) < 16 {
			continue
		}

		s := ifaceStats{name: strings.TrimSpace(name)}
		s.rxBytes, _ = strconv.ParseUint(fields[0], 10, 64)
		s.rxPackets, _ = strconv.ParseUint(fields[1], 10, 64)
		s.rxErrors, _ = strconv.ParseUint(fields[2], 10, 64)
		s.rxDropped, _ = strconv.ParseUint(fields[3], 10, 64)
		s.txBytes, _ = strconv.ParseUint(fields[8], 10, 64)
		s.txPackets, _ = strconv.ParseUint(fields[9], 10, 64)
		s.txErrors, _ = strconv.ParseUint(fields[10], 10, 64)
		s.txDropped, _ = strconv.ParseUint(fields[11], 10, 64)
		stats = append(stats, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].name < stats[j].name })
	return stats, nil
}

// operstate reads the link state from sysfs, best effort.
func (c *Collector) operstate(iface string) string {
	data, err := os.ReadFile(filepath.Join(c.classNetPath, iface, "operstate"))
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(data))
}

// readConnStates counts sockets by state across the tcp tables.
func (c *Collector) readConnStates() connStates {
	var states connStates

	for _, path := range c.tcpPaths {
		file, err := os.Open(path)
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(file)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			if lineNum == 1 {
				continue // header
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 4 {
				continue
			}
			switch fields[3] {
			case "01":
				states.established++
			case "06":
				states.timeWait++
			case "0A":
				states.listening++
			}
		}
		file.Close()
	}

	return states
}
