package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rowjay007/server-stats/pkg/collectors/cpu"
	"github.com/rowjay007/server-stats/pkg/collectors/process"
	"github.com/rowjay007/server-stats/pkg/crosscheck"
	"github.com/rowjay007/server-stats/pkg/cpustat"
	"github.com/rowjay007/server-stats/pkg/metric"
)

var flagCrosscheckJSON bool

var crosscheckCmd = &cobra.Command{
	Use:   "crosscheck",
	Short: "Validate metrics against independent sources",
	Long: `Gathers a full report, then compares CPU and memory utilization
against independent implementations and checks every row against
physical constraints. Large deviations mark a metric suspect or
conflicting.`,
	Args: cobra.NoArgs,
	RunE: runCrosscheck,
}

func init() {
	crosscheckCmd.Flags().DurationVar(&flagInterval, "interval", cpu.DefaultInterval,
		"CPU sampling interval (env "+intervalEnv+")")
	crosscheckCmd.Flags().BoolVar(&flagCrosscheckJSON, "json", false,
		"Output results as JSON")
	rootCmd.AddCommand(crosscheckCmd)
}

func runCrosscheck(cmd *cobra.Command, args []string) error {
	logger := newLogger(flagLogLevel)
	interval := resolveInterval(cmd, logger)

	sampler := cpustat.Detect(logger)
	registry := buildRegistry(sampler, interval, process.DefaultTopN)

	gatherer := metric.NewGatherer(metric.DefaultThresholds(), logger)
	metrics := gatherer.Run(registry.Collectors())

	validations, sanity := crosscheck.RunCrossChecks(metrics, sampler, interval)

	if flagCrosscheckJSON {
		return crosscheck.ReportJSON(os.Stdout, validations, sanity)
	}
	crosscheck.Report(os.Stdout, validations, sanity)
	return nil
}
