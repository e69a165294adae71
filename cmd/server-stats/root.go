package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rowjay007/server-stats/pkg/collectors"
	"github.com/rowjay007/server-stats/pkg/collectors/auth"
	"github.com/rowjay007/server-stats/pkg/collectors/cpu"
	"github.com/rowjay007/server-stats/pkg/collectors/disk"
	"github.com/rowjay007/server-stats/pkg/collectors/host"
	"github.com/rowjay007/server-stats/pkg/collectors/memory"
	"github.com/rowjay007/server-stats/pkg/collectors/network"
	"github.com/rowjay007/server-stats/pkg/collectors/process"
	"github.com/rowjay007/server-stats/pkg/collectors/users"
	"github.com/rowjay007/server-stats/pkg/cpustat"
	"github.com/rowjay007/server-stats/pkg/debug"
	"github.com/rowjay007/server-stats/pkg/metric"
	"github.com/rowjay007/server-stats/pkg/report"
)

// version can be overridden at build time with
// go build -ldflags "-X main.version=x.y.z".
var version = "0.3.0"

// intervalEnv overrides the default sampling interval when the flag is unset.
const intervalEnv = "SERVER_STATS_INTERVAL"

var (
	flagInterval time.Duration
	flagFormat   string
	flagTop      int
	flagWarn     float64
	flagCrit     float64
	flagScore    bool
	flagHints    bool
	flagTimings  bool
	flagRaw      bool
	flagLogLevel string
	flagSections []string

	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "server-stats",
	Short: "Point-in-time server performance report",
	Long: `server-stats takes a point-in-time snapshot of host health: CPU
utilization sampled from kernel counters, memory, disk capacity and
activity, processes, logged-in users, auth events and network
interfaces.

The exit code reflects the report: 0 all healthy, 1 warnings,
2 critical issues, 3 nothing measurable.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runReport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")

	rootCmd.Flags().DurationVar(&flagInterval, "interval", cpu.DefaultInterval,
		"CPU sampling interval (env "+intervalEnv+")")
	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", string(report.FormatTable),
		"Output format (table, json, tsv)")
	rootCmd.Flags().IntVar(&flagTop, "top", process.DefaultTopN,
		"Number of top CPU and memory consumers to show")
	rootCmd.Flags().Float64Var(&flagWarn, "warn", metric.DefaultThresholds().WarnUtil,
		"Warning threshold for utilization percentages")
	rootCmd.Flags().Float64Var(&flagCrit, "crit", metric.DefaultThresholds().CritUtil,
		"Critical threshold for utilization percentages")
	rootCmd.Flags().BoolVar(&flagScore, "score", false,
		"Show a 0-100 health score")
	rootCmd.Flags().BoolVar(&flagHints, "hints", false,
		"Suggest follow-up commands for problematic metrics")
	rootCmd.Flags().BoolVar(&flagTimings, "timings", false,
		"Show per-collector timing after the report")
	rootCmd.Flags().BoolVar(&flagRaw, "raw", false,
		"Dump raw metric values after the report")
	rootCmd.Flags().StringSliceVar(&flagSections, "section", nil,
		"Limit the report to the named sections (repeatable)")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

func runReport(cmd *cobra.Command, args []string) error {
	logger := newLogger(flagLogLevel)

	format, err := report.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	if flagCrit < flagWarn {
		return fmt.Errorf("critical threshold %.1f is below warning threshold %.1f", flagCrit, flagWarn)
	}

	interval := resolveInterval(cmd, logger)
	thresholds := metric.Thresholds{WarnUtil: flagWarn, CritUtil: flagCrit}

	sampler := cpustat.Detect(logger)
	registry := buildRegistry(sampler, interval, flagTop)

	selected, err := selectCollectors(registry, flagSections)
	if err != nil {
		return err
	}

	var timed []*debug.TimedCollector
	if flagTimings {
		wrapped := make([]metric.Collector, len(selected))
		for i, c := range selected {
			tc := debug.NewTimedCollector(c)
			timed = append(timed, tc)
			wrapped[i] = tc
		}
		selected = wrapped
	}

	gatherer := metric.NewGatherer(thresholds, logger)
	metrics := gatherer.Run(selected)

	formatter := report.NewFormatter(format, os.Stdout)
	formatter.SetShowScore(flagScore)
	formatter.SetShowHints(flagHints)
	if err := formatter.Render(metrics); err != nil {
		return err
	}

	if flagRaw {
		debug.DumpRawMetrics(os.Stdout, metrics)
	}
	if flagTimings {
		timings := make([]debug.CollectorTiming, len(timed))
		for i, tc := range timed {
			timings[i] = tc.Timing
		}
		debug.TimingReport(os.Stdout, timings)
	}

	exitCode = metric.ExitCode(metrics)
	return nil
}

// newLogger builds the stderr logger shared by all commands.
func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// resolveInterval applies the environment override when the flag is unset.
func resolveInterval(cmd *cobra.Command, logger *logrus.Logger) time.Duration {
	interval := flagInterval
	if !cmd.Flags().Changed("interval") {
		if env := os.Getenv(intervalEnv); env != "" {
			parsed, err := time.ParseDuration(env)
			if err != nil || parsed <= 0 {
				logger.WithField("value", env).Warn("Ignoring invalid " + intervalEnv)
			} else {
				interval = parsed
			}
		}
	}
	if interval <= 0 {
		interval = cpu.DefaultInterval
	}
	return interval
}

// buildRegistry assembles the collectors in report order.
func buildRegistry(sampler *cpustat.Sampler, interval time.Duration, topN int) *collectors.Registry {
	registry := collectors.NewRegistry()
	registry.Register(host.New())
	registry.Register(cpu.New(sampler, interval))
	registry.Register(memory.New())
	registry.Register(disk.New())
	registry.Register(process.New(topN))
	registry.Register(users.New())
	registry.Register(auth.New())
	registry.Register(network.New())
	return registry
}

// selectCollectors filters the registry by the requested section names.
func selectCollectors(registry *collectors.Registry, sections []string) ([]metric.Collector, error) {
	all := registry.Collectors()
	if len(sections) == 0 {
		return all, nil
	}

	want := make(map[string]bool, len(sections))
	for _, s := range sections {
		want[strings.ToLower(s)] = true
	}

	var selected []metric.Collector
	for _, c := range all {
		key := strings.ToLower(c.Name())
		if want[key] {
			selected = append(selected, c)
			delete(want, key)
		}
	}

	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for s := range want {
			unknown = append(unknown, s)
		}
		sort.Strings(unknown)

		names := make([]string, len(all))
		for i, c := range all {
			names[i] = c.Name()
		}
		return nil, fmt.Errorf("unknown section(s) %s (valid: %s)",
			strings.Join(unknown, ", "), strings.Join(names, ", "))
	}

	return selected, nil
}
