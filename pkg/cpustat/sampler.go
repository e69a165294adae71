package cpustat

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Sampler turns a counter source into utilization samples. When no
// counter source works it estimates through the platform's process
// status utility instead.
type Sampler struct {
	source   Source
	estimate func() (float64, error)
	sleep    func(time.Duration)
}

// NewSampler wraps a counter source. A nil source yields a sampler that
// only ever estimates through the fallback utility.
func NewSampler(source Source) *Sampler {
	return &Sampler{
		source:   source,
		estimate: EstimateBusy,
		sleep:    time.Sleep,
	}
}

// Detect probes the kernel counter source once at startup and returns a
// sampler backed by it, or a fallback-only sampler when the probe fails.
func Detect(logger *logrus.Logger) *Sampler {
	return detectSource(NewProcStatSource(), logger)
}

func detectSource(source Source, logger *logrus.Logger) *Sampler {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	if _, err := source.Capture(); err != nil {
		logger.WithError(err).Debug("Kernel counters unreadable, estimating via system utility")
		return NewSampler(nil)
	}
	logger.WithField("source", source.Name()).Debug("Using kernel counter source")
	return NewSampler(source)
}

// Primary reports whether a kernel counter source backs this sampler.
func (s *Sampler) Primary() bool {
	return s.source != nil
}

// Sample captures two snapshots interval apart and derives percentages
// from their deltas. The wait is a plain suspension, so a call never
// returns before interval has elapsed. One attempt only: callers that
// see ErrInconsistentCounters decide whether to call again for a fresh
// pair. Without a counter source it falls through to Estimate.
func (s *Sampler) Sample(interval time.Duration) (UtilizationSample, error) {
	if s.source == nil {
		return s.Estimate()
	}

	prev, err := s.source.Capture()
	if err != nil {
		return UtilizationSample{}, err
	}

	s.sleep(interval)

	curr, err := s.source.Capture()
	if err != nil {
		return UtilizationSample{}, err
	}

	sample, err := Delta(prev, curr, interval)
	if err != nil {
		return UtilizationSample{}, err
	}
	sample.Origin = s.source.Name()
	return sample, nil
}

// Estimate runs the one-shot utility fallback. The result carries only
// the aggregate busy percentage; Detail stays nil because the utility
// does not expose a trustworthy per-category split.
func (s *Sampler) Estimate() (UtilizationSample, error) {
	busy, err := s.estimate()
	if err != nil {
		return UtilizationSample{}, err
	}
	return UtilizationSample{Busy: busy, Origin: summaryOrigin()}, nil
}
