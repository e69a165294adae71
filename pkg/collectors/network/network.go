// Package network reports interface traffic totals and TCP connection states.
package network

// Collector gathers network metrics.
type Collector struct {
	netDevPath   string
	classNetPath string
	tcpPaths     []string
}

// New creates a network collector reading the standard system locations.
func New() *Collector {
	return &Collector{
		netDevPath:   "/proc/net/dev",
		classNetPath: "/sys/class/net",
		tcpPaths:     []string{"/proc/net/tcp", "/proc/net/tcp6"},
	}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Network"
}
