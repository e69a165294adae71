// Package metric provides the row model and health evaluation shared by
// all report sections.
package metric

// Status represents the health status of a metric.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusUnknown Status = "unknown"
)

// Metric is a single row of the report.
type Metric struct {
	Section  string  `json:"section"`
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	RawValue float64 `json:"raw_value"`
	Status   Status  `json:"status"`
	Detail   string  `json:"detail,omitempty"`
	Source   string  `json:"source,omitempty"`
}

// Thresholds defines warning and critical thresholds for utilization metrics.
type Thresholds struct {
	WarnUtil float64
	CritUtil float64
}

// DefaultThresholds returns the default threshold values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarnUtil: 70.0,
		CritUtil: 90.0,
	}
}

// EvaluateUtilization returns the appropriate status for a utilization percentage.
func (t Thresholds) EvaluateUtilization(percent float64) Status {
	if percent >= t.CritUtil {
		return StatusError
	}
	if percent >= t.WarnUtil {
		return StatusWarning
	}
	return StatusOK
}

// EvaluateErrors returns status based on an error count.
func EvaluateErrors(count int64) Status {
	if count > 0 {
		return StatusWarning
	}
	return StatusOK
}

// EvaluateSaturation returns status based on a saturation value and threshold.
func EvaluateSaturation(value, threshold float64) Status {
	if value > threshold {
		return StatusWarning
	}
	return StatusOK
}

// Summary holds aggregate counts over a set of metrics.
type Summary struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
	Unknown  int `json:"unknown"`
}

// Summarize counts metrics by status.
func Summarize(metrics []Metric) Summary {
	s := Summary{Total: len(metrics)}
	for _, m := range metrics {
		switch m.Status {
		case StatusOK:
			s.OK++
		case StatusWarning:
			s.Warnings++
		case StatusError:
			s.Errors++
		case StatusUnknown:
			s.Unknown++
		}
	}
	return s
}

// ExitCode maps gathered metrics to the process exit code.
func ExitCode(metrics []Metric) int {
	summary := Summarize(metrics)
	if summary.Total > 0 && summary.Unknown == summary.Total {
		return 3 // Nothing measurable
	}
	if summary.Errors > 0 {
		return 2 // Critical issues
	}
	if summary.Warnings > 0 {
		return 1 // Warnings
	}
	return 0 // All OK
}
