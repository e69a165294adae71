//go:build linux

package crosscheck

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const meminfoFixture = `MemTotal:        8388608 kB
MemFree:         2097152 kB
MemAvailable:    4194304 kB
Buffers:          524288 kB
Cached:          1048576 kB
SwapTotal:       1048576 kB
SwapFree:        1048576 kB
`

func TestMeminfoUtilization(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	if err := os.WriteFile(path, []byte(meminfoFixture), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	util, err := meminfoUtilization(path)
	if err != nil {
		t.Fatalf("meminfoUtilization() error = %v", err)
	}
	// (8388608 - 4194304) / 8388608 = 50%
	if math.Abs(util-50.0) > 0.001 {
		t.Errorf("meminfoUtilization() = %v, want 50.0", util)
	}
}

func TestMeminfoUtilizationFallback(t *testing.T) {
	fixture := `MemTotal:        8388608 kB
MemFree:         2097152 kB
Buffers:          524288 kB
Cached:          1048576 kB
`
	path := filepath.Join(t.TempDir(), "meminfo")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	util, err := meminfoUtilization(path)
	if err != nil {
		t.Fatalf("meminfoUtilization() error = %v", err)
	}
	// Available falls back to MemFree+Buffers+Cached = 3670016 kB, used 56.25%
	if math.Abs(util-56.25) > 0.001 {
		t.Errorf("meminfoUtilization() = %v, want 56.25", util)
	}
}

func TestMeminfoUtilizationMissing(t *testing.T) {
	if _, err := meminfoUtilization("/nonexistent/meminfo"); err == nil {
		t.Error("meminfoUtilization() on missing file should return an error")
	}
}

func TestMeminfoUtilizationZeroTotal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	if err := os.WriteFile(path, []byte("MemFree: 100 kB\n"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if _, err := meminfoUtilization(path); err == nil {
		t.Error("meminfoUtilization() without MemTotal should return an error")
	}
}

func TestPlatformMemorySources(t *testing.T) {
	sources := platformMemorySources()
	for _, s := range sources {
		if s.Name == "" {
			t.Error("Source with empty name")
		}
		if s.Value < 0 || s.Value > 100 {
			t.Errorf("Source %s value = %v, want within [0, 100]", s.Name, s.Value)
		}
	}
}
