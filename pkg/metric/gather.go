package metric

import (
	"github.com/sirupsen/logrus"
)

// Collector produces the rows of one report section.
type Collector interface {
	Name() string
	Collect(thresholds Thresholds) ([]Metric, error)
}

// Gatherer runs collectors one after another, in registration order.
// Collection stays strictly sequential so the CPU sampling interval is
// never disturbed by concurrent procfs reads.
type Gatherer struct {
	thresholds Thresholds
	logger     *logrus.Logger
}

// NewGatherer creates a gatherer with the given thresholds.
func NewGatherer(thresholds Thresholds, logger *logrus.Logger) *Gatherer {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Gatherer{
		thresholds: thresholds,
		logger:     logger,
	}
}

// Run executes every collector and concatenates their rows in order.
// A failing collector degrades to a single unknown row for its section
// instead of aborting the report.
func (g *Gatherer) Run(collectors []Collector) []Metric {
	var all []Metric

	for _, collector := range collectors {
		g.logger.WithField("collector", collector.Name()).Debug("Running collector")

		metrics, err := collector.Collect(g.thresholds)
		if err != nil {
			g.logger.WithFields(logrus.Fields{
				"collector": collector.Name(),
				"error":     err,
			}).Warn("Collector failed")

			metrics = []Metric{{
				Section: collector.Name(),
				Name:    "status",
				Value:   "unknown",
				Status:  StatusUnknown,
				Detail:  err.Error(),
			}}
		}
		all = append(all, metrics...)
	}

	return all
}

// RunOne executes a single collector.
func (g *Gatherer) RunOne(collector Collector) ([]Metric, error) {
	g.logger.WithField("collector", collector.Name()).Debug("Running collector")
	return collector.Collect(g.thresholds)
}
