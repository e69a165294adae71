//go:build linux

package process

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// userHZ is the fixed clock tick unit of procfs time fields.
const userHZ = 100

// procInfo is one scanned process.
type procInfo struct {
	pid      int
	user     string
	comm     string
	state    string
	cpuPct   float64
	memPct   float64
	rssBytes uint64
}

// Collect gathers process metrics on Linux.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	uptime, err := readUptime(filepath.Join(c.procRoot, "uptime"))
	if err != nil {
		return nil, err
	}
	totalMem := memTotalBytes(filepath.Join(c.procRoot, "meminfo"))

	procs := c.readAllProcesses(uptime, totalMem)
	if len(procs) == 0 {
		return nil, fmt.Errorf("no readable processes under %s", c.procRoot)
	}

	states := make(map[string]int)
	for _, p := range procs {
		states[p.state]++
	}

	rows := make([]metric.Metric, 0, 3+2*c.topN)
	rows = append(rows, metric.Metric{
		Section:  "Processes",
		Name:     "tasks",
		Value:    fmt.Sprintf("%d total, %d sleeping", len(procs), states["S"]+states["I"]),
		RawValue: float64(len(procs)),
		Status:   metric.StatusOK,
		Detail:   stateSummary(states),
		Source:   c.procRoot,
	})

	if runnable, err := readRunQueue(filepath.Join(c.procRoot, "stat")); err == nil {
		cpus := runtime.NumCPU()
		status := metric.StatusOK
		if runnable > int64(cpus*2) {
			status = metric.StatusWarning
		}
		if runnable > int64(cpus*4) {
			status = metric.StatusError
		}
		rows = append(rows, metric.Metric{
			Section:  "Processes",
			Name:     "run queue",
			Value:    fmt.Sprintf("%d runnable (%d CPUs)", runnable, cpus),
			RawValue: float64(runnable),
			Status:   status,
			Source:   filepath.Join(c.procRoot, "stat"),
		})
	}

	zombies := states["Z"]
	rows = append(rows, metric.Metric{
		Section:  "Processes",
		Name:     "zombies",
		Value:    fmt.Sprintf("%d", zombies),
		RawValue: float64(zombies),
		Status:   metric.EvaluateErrors(int64(zombies)),
		Source:   c.procRoot,
	})

	sort.Slice(procs, func(i, j int) bool { return procs[i].cpuPct > procs[j].cpuPct })
	for i, p := range topN(procs, c.topN) {
		rows = append(rows, metric.Metric{
			Section:  "Processes",
			Name:     fmt.Sprintf("top cpu #%d", i+1),
			Value:    fmt.Sprintf("%.1f%% %s", p.cpuPct, p.comm),
			RawValue: p.cpuPct,
			Status:   metric.StatusOK,
			Detail:   fmt.Sprintf("pid %d user %s, state %s", p.pid, p.user, p.state),
			Source:   c.procRoot,
		})
	}

	byMem := make([]procInfo, len(procs))
	copy(byMem, procs)
	sort.Slice(byMem, func(i, j int) bool { return byMem[i].memPct > byMem[j].memPct })
	for i, p := range topN(byMem, c.topN) {
		rows = append(rows, metric.Metric{
			Section:  "Processes",
			Name:     fmt.Sprintf("top mem #%d", i+1),
			Value:    fmt.Sprintf("%.1f%% %s", p.memPct, p.comm),
			RawValue: p.memPct,
			Status:   metric.StatusOK,
			Detail:   fmt.Sprintf("pid %d user %s, rss %s", p.pid, p.user, humanize.IBytes(p.rssBytes)),
			Source:   c.procRoot,
		})
	}

	return rows, nil
}

func topN(procs []procInfo, n int) []procInfo {
	if len(procs) < n {
		n = len(procs)
	}
	return procs[:n]
}

// stateSummary renders state counts in a stable order.
func stateSummary(states map[string]int) string {
	keys := make([]string, 0, len(states))
	for k := range states {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, states[k]))
	}
	return strings.Join(parts, " ")
}

// readAllProcesses scans every numeric /proc entry, skipping processes
// that vanish mid-scan.
func (c *Collector) readAllProcesses(uptime float64, totalMem uint64) []procInfo {
	statPaths, err := filepath.Glob(filepath.Join(c.procRoot, "[0-9]*", "stat"))
	if err != nil {
		return nil
	}

	procs := make([]procInfo, 0, len(statPaths))
	for _, path := range statPaths {
		p, err := c.readProcessStat(path, uptime, totalMem)
		if err != nil {
			continue
		}
		p.user = readProcessUser(filepath.Join(filepath.Dir(path), "status"))
		procs = append(procs, p)
	}
	return procs
}

// readProcessStat parses one /proc/[pid]/stat file. The CPU percentage
// is the process's whole-life average: total ticks over its age.
func (c *Collector) readProcessStat(path string, uptime float64, totalMem uint64) (procInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return procInfo{}, err
	}

	// comm is enclosed in parentheses and may itself contain spaces
	// or parentheses, so split around the outermost pair.
	content := string(data)
	start := strings.Index(content, "(")
	end := strings.LastIndex(content, ")")
	if start < 0 || end < 0 || end+2 > len(content) {
		return procInfo{}, fmt.Errorf("malformed stat %s", path)
	}

	comm := content[start+1 : end]
	rest := strings.Fields(content[end+2:])
	if len(rest) < 22 {
		return procInfo{}, fmt.Errorf("short stat %s", path)
	}

	pid, err := strconv.Atoi(strings.Fields(content[:start])[0])
	if err != nil {
		return procInfo{}, err
	}

	utime, _ := strconv.ParseUint(rest[11], 10, 64)
	stime, _ := strconv.ParseUint(rest[12], 10, 64)
	starttime, _ := strconv.ParseUint(rest[19], 10, 64)
	rssPages, _ := strconv.ParseUint(rest[21], 10, 64)

	p := procInfo{
		pid:      pid,
		comm:     comm,
		state:    rest[0],
		rssBytes: rssPages * c.pageSize,
	}

	age := uptime - float64(starttime)/userHZ
	if age > 0 {
		cpuSeconds := float64(utime+stime) / userHZ
		p.cpuPct = cpuSeconds / age * 100
	}

	if totalMem > 0 {
		p.memPct = (float64(p.rssBytes) / float64(totalMem)) * 100
	}

	return p, nil
}

// readProcessUser resolves the real uid of a process to a name,
// falling back to the numeric uid.
func readProcessUser(statusPath string) string {
	file, err := os.Open(statusPath)
	if err != nil {
		return "?"
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Uid:") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				break
			}
			uid := fields[1]
			if u, err := user.LookupId(uid); err == nil {
				return u.Username
			}
			return uid
		}
	}
	return "?"
}

// readUptime returns seconds since boot.
func readUptime(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, fmt.Errorf("empty uptime file %s", path)
	}
	return strconv.ParseFloat(fields[0], 64)
}

// memTotalBytes reads MemTotal, zero when unreadable.
func memTotalBytes(path string) uint64 {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && strings.TrimSuffix(fields[0], ":") == "MemTotal" {
			val, _ := strconv.ParseUint(fields[1], 10, 64)
			return val * 1024
		}
	}
	return 0
}

// readRunQueue returns procs_running from a /proc/stat style file.
func readRunQueue(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "procs_running") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return 0, fmt.Errorf("unexpected procs_running format")
			}
			return strconv.ParseInt(fields[1], 10, 64)
		}
	}
	return 0, fmt.Errorf("procs_running not found in %s", path)
}
