package report

import (
	"strings"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// Suggestion represents a diagnostic next-step.
type Suggestion struct {
	Tool    string `json:"tool"`
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// MetricHints groups the suggestions for one problematic metric.
type MetricHints struct {
	Metric      string       `json:"metric"`
	Suggestions []Suggestion `json:"suggestions"`
}

// HintsFor returns diagnostic suggestions for a metric with issues.
func HintsFor(m metric.Metric) []Suggestion {
	if m.Status != metric.StatusError && m.Status != metric.StatusWarning {
		return nil
	}

	var suggestions []Suggestion

	switch m.Section {
	case "CPU":
		suggestions = append(suggestions,
			Suggestion{"top", "top -o %CPU", "Identify top CPU consumers"},
			Suggestion{"server-stats", "server-stats cpu --interval 5s", "Re-sample over a longer window"},
		)

	case "Memory":
		suggestions = append(suggestions,
			Suggestion{"free", "free -h", "Memory and swap breakdown"},
			Suggestion{"top", "top -o %MEM", "Identify top memory consumers"},
		)
		if strings.Contains(m.Name, "oom") {
			suggestions = append(suggestions,
				Suggestion{"dmesg", "dmesg | grep -i oom", "Find which processes were killed"},
			)
		}

	case "Disk":
		suggestions = append(suggestions,
			Suggestion{"df", "df -ih", "Check inode and disk usage"},
		)
		if strings.HasPrefix(m.Name, "io") {
			suggestions = append(suggestions,
				Suggestion{"iostat", "iostat -x 1 3", "Detailed I/O statistics"},
			)
		}

	case "Processes":
		suggestions = append(suggestions,
			Suggestion{"ps", "ps aux --sort=-%cpu | head", "Process table by CPU"},
		)
		if strings.Contains(m.Name, "zombie") {
			suggestions = append(suggestions,
				Suggestion{"ps", "ps -eo pid,ppid,state,comm | awk '$3==\"Z\"'", "List zombies and their parents"},
			)
		}

	case "Network":
		if m.Name == "connections" {
			suggestions = append(suggestions,
				Suggestion{"ss", "ss -s", "Socket statistics summary"},
			)
		} else {
			suggestions = append(suggestions,
				Suggestion{"ip", "ip -s link", "Per-interface counters and state"},
			)
		}

	case "Auth":
		suggestions = append(suggestions,
			Suggestion{"lastb", "lastb | head -20", "Recent failed login attempts"},
		)

	case "Host":
		if strings.Contains(m.Name, "load") {
			suggestions = append(suggestions,
				Suggestion{"uptime", "uptime", "Load average trend"},
				Suggestion{"top", "top -o %CPU", "Identify top CPU consumers"},
			)
		}
	}

	return suggestions
}

// GatherHints returns suggestions for all metrics with issues, in row order.
func GatherHints(metrics []metric.Metric) []MetricHints {
	var results []MetricHints
	for _, m := range metrics {
		suggestions := HintsFor(m)
		if len(suggestions) > 0 {
			results = append(results, MetricHints{
				Metric:      m.Section + " " + m.Name,
				Suggestions: suggestions,
			})
		}
	}
	return results
}
