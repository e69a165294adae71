// Package process reports task counts and the heaviest processes.
package process

import "os"

// DefaultTopN is how many processes each ranking lists.
const DefaultTopN = 3

// Collector gathers process metrics.
type Collector struct {
	procRoot string
	topN     int
	pageSize uint64
}

// New creates a process collector scanning /proc. A non-positive topN
// falls back to DefaultTopN.
func New(topN int) *Collector {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Collector{
		procRoot: "/proc",
		topN:     topN,
		pageSize: uint64(os.Getpagesize()),
	}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Processes"
}
