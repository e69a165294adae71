//go:build linux

package network

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rowjay007/server-stats/pkg/metric"
)

const netDevFixture = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 5000000   50000    0    0    0     0          0         0  5000000   50000    0    0    0     0       0          0
  eth0: 8589934592 1234567    2    1    0     0          0         0 1073741824 7654321    1    0    0     0       0          0
 wlan0:  104857600  200000    0    0    0     0          0         0   52428800  100000    0    0    0     0       0          0
`

const tcpFixture = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 0100007F:0050 00000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 12345 1 0000000000000000 100 0 0 10 0
   1: 0100007F:0016 0A0A0A0A:C350 01 00000000:00000000 00:00000000 00000000     0        0 12346 1 0000000000000000 100 0 0 10 0
   2: 0100007F:0016 0B0B0B0B:C351 01 00000000:00000000 00:00000000 00000000     0        0 12347 1 0000000000000000 100 0 0 10 0
   3: 0100007F:1F90 0C0C0C0C:C352 06 00000000:00000000 00:00000000 00000000     0        0 12348 1 0000000000000000 100 0 0 10 0
`

const tcp6Fixture = `  sl  local_address                         remote_address                        st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 00000000000000000000000000000000:1F91 00000000000000000000000000000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 22345 1 0000000000000000 100 0 0 10 0
   1: 00000000000000000000000001000000:0050 00000000000000000000000002000000:C353 06 00000000:00000000 00:00000000 00000000     0        0 22346 1 0000000000000000 100 0 0 10 0
`

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
}

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	dir := t.TempDir()

	netDev := filepath.Join(dir, "net", "dev")
	writeFixture(t, netDev, netDevFixture)

	tcpPath := filepath.Join(dir, "net", "tcp")
	writeFixture(t, tcpPath, tcpFixture)
	tcp6Path := filepath.Join(dir, "net", "tcp6")
	writeFixture(t, tcp6Path, tcp6Fixture)

	classNet := filepath.Join(dir, "class", "net")
	writeFixture(t, filepath.Join(classNet, "eth0", "operstate"), "up\n")
	writeFixture(t, filepath.Join(classNet, "wlan0", "operstate"), "down\n")

	return &Collector{
		netDevPath:   netDev,
		classNetPath: classNet,
		tcpPaths:     []string{tcpPath, tcp6Path},
	}
}

func findRow(t *testing.T, rows []metric.Metric, name string) metric.Metric {
	t.Helper()
	for _, m := range rows {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("No row named %q in %d rows", name, len(rows))
	return metric.Metric{}
}

func TestReadNetDevStats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dev")
	writeFixture(t, path, netDevFixture)

	stats, err := readNetDevStats(path)
	if err != nil {
		t.Fatalf("readNetDevStats() error = %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("readNetDevStats() returned %d interfaces, want 3", len(stats))
	}

	// Sorted by name.
	if stats[0].name != "eth0" || stats[1].name != "lo" || stats[2].name != "wlan0" {
		t.Errorf("Interface order = %s, %s, %s, want eth0, lo, wlan0",
			stats[0].name, stats[1].name, stats[2].name)
	}

	eth0 := stats[0]
	if eth0.rxBytes != 8589934592 {
		t.Errorf("eth0 rxBytes = %d, want 8589934592", eth0.rxBytes)
	}
	if eth0.txBytes != 1073741824 {
		t.Errorf("eth0 txBytes = %d, want 1073741824", eth0.txBytes)
	}
	if eth0.rxPackets != 1234567 {
		t.Errorf("eth0 rxPackets = %d, want 1234567", eth0.rxPackets)
	}
	if eth0.rxErrors != 2 || eth0.txErrors != 1 {
		t.Errorf("eth0 errors = %d/%d, want 2/1", eth0.rxErrors, eth0.txErrors)
	}
	if eth0.rxDropped != 1 || eth0.txDropped != 0 {
		t.Errorf("eth0 dropped = %d/%d, want 1/0", eth0.rxDropped, eth0.txDropped)
	}
}

func TestReadNetDevStatsMissing(t *testing.T) {
	if _, err := readNetDevStats("/nonexistent/net/dev"); err == nil {
		t.Error("readNetDevStats() on missing file should return an error")
	}
}

func TestReadConnStates(t *testing.T) {
	c := newTestCollector(t)

	states := c.readConnStates()
	if states.established != 2 {
		t.Errorf("established = %d, want 2", states.established)
	}
	if states.listening != 2 {
		t.Errorf("listening = %d, want 2", states.listening)
	}
	if states.timeWait != 2 {
		t.Errorf("timeWait = %d, want 2", states.timeWait)
	}
}

func TestReadConnStatesMissingTables(t *testing.T) {
	c := &Collector{tcpPaths: []string{"/nonexistent/tcp"}}
	states := c.readConnStates()
	if states.established != 0 || states.listening != 0 || states.timeWait != 0 {
		t.Errorf("readConnStates() on missing tables = %+v, want zeros", states)
	}
}

func TestCollect(t *testing.T) {
	c := newTestCollector(t)

	rows, err := c.Collect(metric.DefaultThresholds())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	// Two interfaces (lo skipped), four rows each, plus connections.
	if len(rows) != 9 {
		t.Fatalf("Collect() returned %d rows, want 9", len(rows))
	}

	for _, m := range rows {
		if strings.HasSuffix(m.Name, "(lo)") {
			t.Errorf("Loopback should be skipped, got row %q", m.Name)
		}
		if m.Section != "Network" {
			t.Errorf("Row %q section = %q, want Network", m.Name, m.Section)
		}
	}

	rx := findRow(t, rows, "rx (eth0)")
	if rx.Value != "8.0 GiB" {
		t.Errorf("rx (eth0) = %q, want 8.0 GiB", rx.Value)
	}
	if !strings.Contains(rx.Detail, "1,234,567 packets") {
		t.Errorf("rx (eth0) detail = %q, want packet count", rx.Detail)
	}

	tx := findRow(t, rows, "tx (eth0)")
	if tx.Value != "1.0 GiB" {
		t.Errorf("tx (eth0) = %q, want 1.0 GiB", tx.Value)
	}

	errRow := findRow(t, rows, "errors (eth0)")
	if errRow.Value != "3 errs, 1 drops" {
		t.Errorf("errors (eth0) = %q, want 3 errs, 1 drops", errRow.Value)
	}
	if errRow.Status != metric.StatusWarning {
		t.Errorf("errors (eth0) status = %v, want warning", errRow.Status)
	}

	cleanErr := findRow(t, rows, "errors (wlan0)")
	if cleanErr.Status != metric.StatusOK {
		t.Errorf("errors (wlan0) status = %v, want ok", cleanErr.Status)
	}

	link := findRow(t, rows, "link (eth0)")
	if link.Value != "up" || link.Status != metric.StatusOK {
		t.Errorf("link (eth0) = %q/%v, want up/ok", link.Value, link.Status)
	}

	down := findRow(t, rows, "link (wlan0)")
	if down.Value != "down" || down.Status != metric.StatusWarning {
		t.Errorf("link (wlan0) = %q/%v, want down/warning", down.Value, down.Status)
	}

	conns := findRow(t, rows, "connections")
	if conns.Value != "2 established, 2 listening, 2 time-wait" {
		t.Errorf("connections = %q, want 2 established, 2 listening, 2 time-wait", conns.Value)
	}
	if conns.Status != metric.StatusOK {
		t.Errorf("connections status = %v, want ok", conns.Status)
	}
	if conns.RawValue != 2 {
		t.Errorf("connections raw = %v, want 2", conns.RawValue)
	}
}

func TestCollectRowOrderDeterministic(t *testing.T) {
	c := newTestCollector(t)

	first, err := c.Collect(metric.DefaultThresholds())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	second, err := c.Collect(metric.DefaultThresholds())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	for i := range first {
		if first[i].Name != second[i].Name {
			t.Errorf("Row %d name differs across runs: %q vs %q", i, first[i].Name, second[i].Name)
		}
	}
}

func TestCollectMissingNetDev(t *testing.T) {
	c := &Collector{netDevPath: "/nonexistent/net/dev"}
	if _, err := c.Collect(metric.DefaultThresholds()); err == nil {
		t.Error("Collect() with missing /proc/net/dev should return an error")
	}
}

func TestOperstateMissing(t *testing.T) {
	c := &Collector{classNetPath: t.TempDir()}
	if got := c.operstate("eth9"); got != "unknown" {
		t.Errorf("operstate(eth9) = %q, want unknown", got)
	}
}
