package crosscheck

import (
	"fmt"
	"math"
	"strings"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// SanityResult holds the outcome of a physical constraint check.
type SanityResult struct {
	Check   string `json:"check"`
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// RunSanityChecks validates gathered metrics against physical constraints.
func RunSanityChecks(metrics []metric.Metric) []SanityResult {
	var results []SanityResult

	for _, m := range metrics {
		if m.Status == metric.StatusUnknown {
			continue
		}
		name := m.Section + " " + m.Name

		// Percentage rows must stay within [0, 100].
		if strings.Contains(m.Value, "%") {
			switch {
			case m.RawValue < 0:
				results = append(results, SanityResult{
					Check:   name + " percentage",
					Details: fmt.Sprintf("negative value: %.2f", m.RawValue),
				})
			case m.RawValue > 100:
				results = append(results, SanityResult{
					Check:   name + " percentage",
					Details: fmt.Sprintf("exceeds 100%%: %.2f", m.RawValue),
				})
			default:
				results = append(results, SanityResult{
					Check:   name + " percentage",
					Passed:  true,
					Details: fmt.Sprintf("%.2f%% within [0, 100]", m.RawValue),
				})
			}
			continue
		}

		// Everything else carries a counter or gauge, never negative.
		if m.RawValue < 0 {
			results = append(results, SanityResult{
				Check:   name + " non-negative",
				Details: fmt.Sprintf("negative value: %.2f", m.RawValue),
			})
			continue
		}

		// Event counts must be whole numbers.
		if isCountRow(m.Name) {
			if m.RawValue != math.Trunc(m.RawValue) {
				results = append(results, SanityResult{
					Check:   name + " count",
					Details: fmt.Sprintf("fractional count: %.2f", m.RawValue),
				})
			} else {
				results = append(results, SanityResult{
					Check:   name + " count",
					Passed:  true,
					Details: fmt.Sprintf("%.0f is a whole number", m.RawValue),
				})
			}
		}
	}

	return results
}

// isCountRow reports whether a row name denotes an event counter.
func isCountRow(name string) bool {
	for _, marker := range []string{"errors", "kills", "zombies", "failed"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
