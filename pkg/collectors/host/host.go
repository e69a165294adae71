// Package host reports machine identity, uptime and load.
package host

// Collector gathers host identity metrics.
type Collector struct {
	osReleasePath string
	loadavgPath   string
	cpuinfoPath   string
}

// New creates a host collector reading the standard system locations.
func New() *Collector {
	return &Collector{
		osReleasePath: "/etc/os-release",
		loadavgPath:   "/proc/loadavg",
		cpuinfoPath:   "/proc/cpuinfo",
	}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Host"
}
