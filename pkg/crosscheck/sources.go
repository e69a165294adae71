package crosscheck

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/rowjay007/server-stats/pkg/cpustat"
)

// GatherCPUSources returns CPU busy readings from independent implementations.
func GatherCPUSources(sampler *cpustat.Sampler, interval time.Duration) []Source {
	var sources []Source

	// Source 1: our own counter sampler
	if sampler != nil {
		if sample, err := sampler.Sample(interval); err == nil {
			sources = append(sources, Source{
				Name:    "kernel counters",
				Value:   sample.Busy,
				Unit:    "%",
				RawData: sample.Origin,
			})
		}
	}

	// Source 2: gopsutil's independent counter implementation
	if pcts, err := cpu.Percent(interval, false); err == nil && len(pcts) > 0 {
		sources = append(sources, Source{
			Name:  "gopsutil",
			Value: pcts[0],
			Unit:  "%",
		})
	}

	// Source 3: 1-min load average normalized to CPU count
	if avg, err := load.Avg(); err == nil {
		sources = append(sources, Source{
			Name:    "loadavg",
			Value:   avg.Load1 / float64(runtime.NumCPU()) * 100,
			Unit:    "load/cpu",
			RawData: "1-min load average normalized to CPU count",
		})
	}

	return sources
}

// GatherMemorySources returns memory utilization from independent implementations.
func GatherMemorySources() []Source {
	var sources []Source

	if vm, err := mem.VirtualMemory(); err == nil {
		sources = append(sources, Source{
			Name:  "gopsutil",
			Value: vm.UsedPercent,
			Unit:  "%",
		})
	}

	return append(sources, platformMemorySources()...)
}
