//go:build linux

package memory

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rowjay007/server-stats/pkg/metric"
)

const sampleMemInfo = `MemTotal:        8388608 kB
MemFree:         1048576 kB
MemAvailable:    4194304 kB
Buffers:          524288 kB
Cached:          2097152 kB
SwapTotal:       2097152 kB
SwapFree:        1572864 kB
Dirty:           1048576 kB
`

const sampleVMStat = `nr_free_pages 262144
pgmajfault 12345
pswpin 100
pswpout 250
pgscan_kswapd 0
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s fixture: %v", name, err)
	}
	return path
}

func TestReadMemInfo(t *testing.T) {
	info, err := readMemInfo(writeFixture(t, "meminfo", sampleMemInfo))
	if err != nil {
		t.Fatalf("readMemInfo() error = %v", err)
	}
	if info["MemTotal"] != 8388608 {
		t.Errorf("MemTotal = %d, want 8388608", info["MemTotal"])
	}
	if info["SwapFree"] != 1572864 {
		t.Errorf("SwapFree = %d, want 1572864", info["SwapFree"])
	}
}

func TestCalculateUtilization(t *testing.T) {
	tests := []struct {
		name     string
		info     map[string]uint64
		wantPct  float64
		wantUsed uint64
	}{
		{
			"with MemAvailable",
			map[string]uint64{"MemTotal": 1000, "MemAvailable": 400},
			60.0,
			600 * 1024,
		},
		{
			"fallback without MemAvailable",
			map[string]uint64{"MemTotal": 1000, "MemFree": 100, "Buffers": 100, "Cached": 200},
			60.0,
			600 * 1024,
		},
		{
			"zero total",
			map[string]uint64{},
			0,
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, used := calculateUtilization(tt.info)
			if math.Abs(pct-tt.wantPct) > 0.001 {
				t.Errorf("pct = %v, want %v", pct, tt.wantPct)
			}
			if used != tt.wantUsed {
				t.Errorf("used = %d, want %d", used, tt.wantUsed)
			}
		})
	}
}

func TestSwapUsage(t *testing.T) {
	pct, value := swapUsage(map[string]uint64{"SwapTotal": 1024, "SwapFree": 768})
	if math.Abs(pct-25.0) > 0.001 {
		t.Errorf("pct = %v, want 25.0", pct)
	}
	if value != "256 KiB / 1.0 MiB (25.0%)" {
		t.Errorf("value = %q", value)
	}

	pct, value = swapUsage(map[string]uint64{})
	if pct != 0 || value != "0 B (no swap)" {
		t.Errorf("no swap = (%v, %q), want (0, \"0 B (no swap)\")", pct, value)
	}
}

func TestReadVMStat(t *testing.T) {
	stats, err := readVMStat(writeFixture(t, "vmstat", sampleVMStat))
	if err != nil {
		t.Fatalf("readVMStat() error = %v", err)
	}
	if stats["pgmajfault"] != 12345 {
		t.Errorf("pgmajfault = %d, want 12345", stats["pgmajfault"])
	}
	if stats["pswpout"] != 250 {
		t.Errorf("pswpout = %d, want 250", stats["pswpout"])
	}
}

func TestDirtyRatio(t *testing.T) {
	pct, ok := dirtyRatio(map[string]uint64{"MemTotal": 1000, "Dirty": 125})
	if !ok || math.Abs(pct-12.5) > 0.001 {
		t.Errorf("dirtyRatio() = (%v, %v), want (12.5, true)", pct, ok)
	}

	if _, ok := dirtyRatio(map[string]uint64{"Dirty": 125}); ok {
		t.Error("dirtyRatio() without MemTotal should report not ok")
	}
}

func TestCollectRows(t *testing.T) {
	c := &Collector{
		memInfoPath: writeFixture(t, "meminfo", sampleMemInfo),
		vmStatPath:  writeFixture(t, "vmstat", sampleVMStat),
		kernLogPath: writeFixture(t, "kern.log", "Jan 1 kernel: Out of memory: Killed process 123 (stress)\nJan 1 kernel: usb 1-1 connected\n"),
	}

	rows, err := c.Collect(metric.DefaultThresholds())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	byName := map[string]metric.Metric{}
	for _, r := range rows {
		byName[r.Name] = r
	}

	if got := byName["total"].Value; got != "8.0 GiB" {
		t.Errorf("total = %q, want %q", got, "8.0 GiB")
	}
	used := byName["used"]
	if math.Abs(used.RawValue-50.0) > 0.001 {
		t.Errorf("used pct = %v, want 50.0", used.RawValue)
	}
	if used.Status != metric.StatusOK {
		t.Errorf("used status = %v, want ok", used.Status)
	}
	swap := byName["swap"]
	if swap.Status != metric.StatusWarning {
		t.Errorf("swap status = %v, want warning (swap in use)", swap.Status)
	}
	oom := byName["oom kills"]
	if oom.Value != "1" || oom.Status != metric.StatusWarning {
		t.Errorf("oom kills = %q/%v, want 1/warning", oom.Value, oom.Status)
	}
	paging := byName["paging"]
	if paging.Value != "12,345 major faults" {
		t.Errorf("paging = %q, want 12,345 major faults", paging.Value)
	}
	if paging.Detail != "swap in 100, swap out 250 since boot" {
		t.Errorf("paging detail = %q", paging.Detail)
	}
	dirty := byName["dirty pages"]
	if dirty.Value != "12.5%" {
		t.Errorf("dirty pages = %q, want 12.5%%", dirty.Value)
	}
	if dirty.Status != metric.StatusWarning {
		t.Errorf("dirty pages status = %v, want warning above 10%%", dirty.Status)
	}
}

func TestCollectMissingMemInfo(t *testing.T) {
	c := &Collector{
		memInfoPath: filepath.Join(t.TempDir(), "absent"),
		kernLogPath: filepath.Join(t.TempDir(), "absent"),
	}
	if _, err := c.Collect(metric.DefaultThresholds()); err == nil {
		t.Error("Collect() error = nil, want error for missing meminfo")
	}
}
