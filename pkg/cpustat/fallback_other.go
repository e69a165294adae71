//go:build !linux && !darwin

package cpustat

// No portable summary utility; EstimateBusy reports unavailable.
var summaryCommand []string
