package report

import "github.com/rowjay007/server-stats/pkg/metric"

// HealthScore computes a 0-100 health score from gathered metrics.
// Starts at 100, -15 per error, -5 per warning, -3 per unknown.
func HealthScore(metrics []metric.Metric) int {
	score := 100
	for _, m := range metrics {
		switch m.Status {
		case metric.StatusError:
			score -= 15
		case metric.StatusWarning:
			score -= 5
		case metric.StatusUnknown:
			score -= 3
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ScoreLabel returns a human-readable label for a health score.
func ScoreLabel(score int) string {
	if score >= 80 {
		return "Healthy"
	}
	if score >= 50 {
		return "Degraded"
	}
	return "Critical"
}
