package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rowjay007/server-stats/pkg/collectors/cpu"
	"github.com/rowjay007/server-stats/pkg/cpustat"
)

var flagCPUJSON bool

var cpuCmd = &cobra.Command{
	Use:   "cpu",
	Short: "Sample CPU utilization and print the breakdown",
	Long: `Takes two time-spaced readings of the kernel's cumulative CPU
counters and prints the utilization percentages for the interval
between them. Falls back to a one-shot utility estimate when the
counters are unavailable.`,
	Args: cobra.NoArgs,
	RunE: runCPU,
}

func init() {
	cpuCmd.Flags().DurationVar(&flagInterval, "interval", cpu.DefaultInterval,
		"Sampling interval (env "+intervalEnv+")")
	cpuCmd.Flags().BoolVar(&flagCPUJSON, "json", false,
		"Output the sample as JSON")
	rootCmd.AddCommand(cpuCmd)
}

func runCPU(cmd *cobra.Command, args []string) error {
	logger := newLogger(flagLogLevel)
	interval := resolveInterval(cmd, logger)

	sampler := cpustat.Detect(logger)

	sample, err := sampler.Sample(interval)
	if errors.Is(err, cpustat.ErrInconsistentCounters) {
		logger.Debug("Counters regressed, sampling a fresh pair")
		sample, err = sampler.Sample(interval)
	}
	if err != nil && errors.Is(err, cpustat.ErrUnavailable) && sampler.Primary() {
		logger.WithError(err).Debug("Counter source vanished, falling back to utility estimate")
		sample, err = sampler.Estimate()
	}
	if err != nil {
		return fmt.Errorf("cpu utilization unavailable: %w", err)
	}

	if flagCPUJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sample)
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	bold := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Printf("%s %s\n", title.Render("CPU busy:"), bold.Render(fmt.Sprintf("%.1f%%", sample.Busy)))
	if sample.Detail != nil {
		d := sample.Detail
		fmt.Printf("  user %.1f%%  nice %.1f%%  system %.1f%%  idle %.1f%%\n",
			d.User, d.Nice, d.System, d.Idle)
		fmt.Printf("  iowait %.1f%%  irq %.1f%%  softirq %.1f%%  steal %.1f%%\n",
			d.IOWait, d.IRQ, d.SoftIRQ, d.Steal)
		fmt.Println(dim.Render(fmt.Sprintf("  source: %s, interval: %v", sample.Origin, sample.Interval)))
	} else {
		fmt.Println(dim.Render("  breakdown unavailable (one-shot utility estimate)"))
		fmt.Println(dim.Render(fmt.Sprintf("  source: %s", sample.Origin)))
	}

	return nil
}
