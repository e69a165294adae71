package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowjay007/server-stats/pkg/benchmark"
	"github.com/rowjay007/server-stats/pkg/collectors/process"
	"github.com/rowjay007/server-stats/pkg/cpustat"
	"github.com/rowjay007/server-stats/pkg/metric"
)

var (
	flagBenchIterations int
	flagBenchWarmup     int
	flagBenchInterval   time.Duration
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark the collectors themselves",
	Long: `Runs every collector repeatedly and reports per-collector latency
percentiles, value jitter and the tool's own allocation overhead.
The CPU collector's latency includes its deliberate sampling sleep,
so a short --interval keeps runs quick.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	defaults := benchmark.DefaultOptions()
	benchCmd.Flags().IntVar(&flagBenchIterations, "iterations", defaults.Iterations,
		"Measured iterations per collector")
	benchCmd.Flags().IntVar(&flagBenchWarmup, "warmup", defaults.Warmup,
		"Warmup iterations per collector")
	benchCmd.Flags().DurationVar(&flagBenchInterval, "interval", 100*time.Millisecond,
		"CPU sampling interval per iteration")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	logger := newLogger(flagLogLevel)

	sampler := cpustat.Detect(logger)
	registry := buildRegistry(sampler, flagBenchInterval, process.DefaultTopN)

	opts := benchmark.Options{
		Iterations: flagBenchIterations,
		Warmup:     flagBenchWarmup,
	}
	if opts.Iterations < 1 {
		opts.Iterations = 1
	}
	if opts.Warmup < 0 {
		opts.Warmup = 0
	}

	results := benchmark.Run(registry.Collectors(), metric.DefaultThresholds(), opts)
	overhead := benchmark.MeasureOverhead()
	benchmark.RenderResults(os.Stdout, results, overhead)
	return nil
}
