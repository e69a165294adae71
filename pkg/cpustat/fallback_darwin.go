//go:build darwin

package cpustat

// One logging pass with zero process rows; only the header matters.
var summaryCommand = []string{"top", "-l", "1", "-n", "0"}
