// Package auth reports login attempts from the system auth log.
package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// failedLoginCritical marks the count where failures go from noise to
// a likely brute force attempt.
const failedLoginCritical = 100

// counts holds the tallies of one log scan.
type counts struct {
	failed   int64
	invalid  int64
	accepted int64
}

// Collector scans the auth log for login activity.
type Collector struct {
	logPaths []string
}

// New creates an auth collector trying the common log locations.
func New() *Collector {
	return &Collector{
		logPaths: []string{"/var/log/auth.log", "/var/log/secure"},
	}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Auth"
}

// Collect scans the first readable auth log. Unreadable logs degrade
// to an unknown row; they usually just need root.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	for _, path := range c.logPaths {
		file, err := os.Open(path)
		if err != nil {
			continue
		}
		tallies := scanAuthLog(file)
		file.Close()
		return c.rows(tallies, path), nil
	}

	return []metric.Metric{{
		Section: "Auth",
		Name:    "failed logins",
		Value:   "unknown",
		Status:  metric.StatusUnknown,
		Detail:  fmt.Sprintf("no readable auth log among %s (try root)", strings.Join(c.logPaths, ", ")),
	}}, nil
}

func (c *Collector) rows(tallies counts, path string) []metric.Metric {
	failedStatus := metric.EvaluateErrors(tallies.failed)
	if tallies.failed >= failedLoginCritical {
		failedStatus = metric.StatusError
	}

	return []metric.Metric{
		{
			Section:  "Auth",
			Name:     "failed logins",
			Value:    fmt.Sprintf("%d", tallies.failed),
			RawValue: float64(tallies.failed),
			Status:   failedStatus,
			Detail:   "failed password and authentication failure lines",
			Source:   path,
		},
		{
			Section:  "Auth",
			Name:     "invalid users",
			Value:    fmt.Sprintf("%d", tallies.invalid),
			RawValue: float64(tallies.invalid),
			Status:   metric.EvaluateErrors(tallies.invalid),
			Detail:   "attempts against nonexistent accounts",
			Source:   path,
		},
		{
			Section:  "Auth",
			Name:     "accepted logins",
			Value:    fmt.Sprintf("%d", tallies.accepted),
			RawValue: float64(tallies.accepted),
			Status:   metric.StatusOK,
			Source:   path,
		},
	}
}

// scanAuthLog tallies login lines from an auth log stream.
func scanAuthLog(r io.Reader) counts {
	var tallies counts

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())
		switch {
		case strings.Contains(line, "invalid user"):
			tallies.invalid++
			tallies.failed++
		case strings.Contains(line, "failed password"), strings.Contains(line, "authentication failure"):
			tallies.failed++
		case strings.Contains(line, "accepted password"), strings.Contains(line, "accepted publickey"):
			tallies.accepted++
		}
	}

	return tallies
}
