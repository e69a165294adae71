//go:build linux

package cpustat

// Batch mode, single iteration; the aggregate cpu line sits in the header.
var summaryCommand = []string{"top", "-b", "-n", "1"}
