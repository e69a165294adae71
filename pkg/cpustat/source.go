package cpustat

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Source yields cumulative counter snapshots from a single origin.
type Source interface {
	// Name identifies the origin in sample output and logs.
	Name() string
	// Capture reads the counters once. Errors wrap ErrUnavailable.
	Capture() (CounterSnapshot, error)
}

// ProcStatSource reads the aggregate "cpu" line of a /proc/stat style file.
type ProcStatSource struct {
	Path string
}

// NewProcStatSource returns a source backed by the kernel's /proc/stat.
func NewProcStatSource() *ProcStatSource {
	return &ProcStatSource{Path: "/proc/stat"}
}

// Name returns the backing file path.
func (s *ProcStatSource) Name() string {
	return s.Path
}

// Capture reads the file and parses the aggregate cpu line.
func (s *ProcStatSource) Capture() (CounterSnapshot, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return CounterSnapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "cpu ") {
			return parseCounterLine(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return CounterSnapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return CounterSnapshot{}, fmt.Errorf("%w: no aggregate cpu line in %s", ErrUnavailable, s.Path)
}

// parseCounterLine parses "cpu  user nice system idle [iowait irq softirq
// steal guest guestnice]". At least the first four columns must be present;
// trailing columns beyond the known ten are ignored.
func parseCounterLine(line string) (CounterSnapshot, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return CounterSnapshot{}, fmt.Errorf("%w: short cpu line %q", ErrUnavailable, line)
	}

	var vals [10]uint64
	for i := 0; i < len(vals) && i+1 < len(fields); i++ {
		v, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return CounterSnapshot{}, fmt.Errorf("%w: bad counter %q in cpu line", ErrUnavailable, fields[i+1])
		}
		vals[i] = v
	}

	return CounterSnapshot{
		User:      vals[0],
		Nice:      vals[1],
		System:    vals[2],
		Idle:      vals[3],
		IOWait:    vals[4],
		IRQ:       vals[5],
		SoftIRQ:   vals[6],
		Steal:     vals[7],
		Guest:     vals[8],
		GuestNice: vals[9],
	}, nil
}
