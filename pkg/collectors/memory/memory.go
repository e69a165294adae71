// Package memory reports RAM and swap usage.
package memory

// Collector gathers memory metrics.
type Collector struct {
	memInfoPath string
	vmStatPath  string
	kernLogPath string
}

// New creates a memory collector reading the standard system locations.
func New() *Collector {
	return &Collector{
		memInfoPath: "/proc/meminfo",
		vmStatPath:  "/proc/vmstat",
		kernLogPath: "/var/log/kern.log",
	}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Memory"
}
