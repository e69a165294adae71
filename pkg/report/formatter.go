// Package report renders gathered metrics as a styled table, JSON, or TSV.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatTSV   Format = "tsv"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatTSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or tsv)", s)
	}
}

// Formatter handles output formatting.
type Formatter struct {
	format    Format
	writer    io.Writer
	showScore bool
	showHints bool
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// SetShowScore enables health score display.
func (f *Formatter) SetShowScore(show bool) {
	f.showScore = show
}

// SetShowHints enables follow-up command suggestions.
func (f *Formatter) SetShowHints(show bool) {
	f.showHints = show
}

// Render outputs the metrics in the configured format.
func (f *Formatter) Render(metrics []metric.Metric) error {
	switch f.format {
	case FormatJSON:
		return f.renderJSON(metrics)
	case FormatTSV:
		return f.renderTSV(metrics)
	default:
		return f.renderTable(metrics)
	}
}

// scoreEnvelope is the JSON shape of the optional health score.
type scoreEnvelope struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// renderJSON outputs metrics as JSON.
func (f *Formatter) renderJSON(metrics []metric.Metric) error {
	output := struct {
		Metrics []metric.Metric `json:"metrics"`
		Summary metric.Summary  `json:"summary"`
		Score   *scoreEnvelope  `json:"score,omitempty"`
		Hints   []MetricHints   `json:"hints,omitempty"`
	}{
		Metrics: metrics,
		Summary: metric.Summarize(metrics),
	}

	if f.showScore {
		score := HealthScore(metrics)
		output.Score = &scoreEnvelope{Value: score, Label: ScoreLabel(score)}
	}
	if f.showHints {
		output.Hints = GatherHints(metrics)
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// renderTable outputs metrics as a styled table grouped by section.
func (f *Formatter) renderTable(metrics []metric.Metric) error {
	// Define styles
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	// Status colors
	statusStyles := map[metric.Status]lipgloss.Style{
		metric.StatusOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true), // Green
		metric.StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true), // Yellow
		metric.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),  // Red
		metric.StatusUnknown: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true),  // Gray
	}

	// Print header
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	fmt.Fprintln(f.writer, titleStyle.Render("Server Performance Report"))
	fmt.Fprintln(f.writer, strings.Repeat("═", 60))
	fmt.Fprintln(f.writer)

	// Build table data - repeat the section name only on its first row
	rows := make([][]string, len(metrics))
	lastSection := ""
	for i, m := range metrics {
		section := m.Section
		if section == lastSection {
			section = ""
		} else {
			lastSection = m.Section
		}
		statusStyle := statusStyles[m.Status]
		rows[i] = []string{
			section,
			m.Name,
			m.Value,
			statusStyle.Render(strings.ToUpper(string(m.Status))),
			m.Detail,
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("SECTION", "METRIC", "VALUE", "STATUS", "DETAIL").
		Rows(rows...)

	fmt.Fprintln(f.writer, t)

	// Print summary
	summary := metric.Summarize(metrics)
	fmt.Fprintln(f.writer)
	f.renderSummary(summary, statusStyles)

	// Show health score if enabled
	if f.showScore {
		score := HealthScore(metrics)
		label := ScoreLabel(score)
		scoreStyle := statusStyles[metric.StatusOK]
		if score < 80 {
			scoreStyle = statusStyles[metric.StatusWarning]
		}
		if score < 50 {
			scoreStyle = statusStyles[metric.StatusError]
		}
		fmt.Fprintf(f.writer, "Health Score: %s\n",
			scoreStyle.Render(fmt.Sprintf("%d/100 (%s)", score, label)))
	}

	// Follow-up suggestions for rows with issues
	if f.showHints {
		f.renderHints(metrics)
	}

	return nil
}

// renderSummary outputs the summary line.
func (f *Formatter) renderSummary(summary metric.Summary, styles map[metric.Status]lipgloss.Style) {
	parts := []string{}

	if summary.Errors > 0 {
		parts = append(parts, styles[metric.StatusError].Render(fmt.Sprintf("%d errors", summary.Errors)))
	}
	if summary.Warnings > 0 {
		parts = append(parts, styles[metric.StatusWarning].Render(fmt.Sprintf("%d warnings", summary.Warnings)))
	}
	if summary.Unknown > 0 {
		parts = append(parts, styles[metric.StatusUnknown].Render(fmt.Sprintf("%d unknown", summary.Unknown)))
	}

	if len(parts) == 0 {
		fmt.Fprintln(f.writer, styles[metric.StatusOK].Render("All metrics healthy"))
	} else {
		fmt.Fprintf(f.writer, "Summary: %s\n", strings.Join(parts, ", "))
	}
}

// renderHints outputs follow-up commands for metrics with issues.
func (f *Formatter) renderHints(metrics []metric.Metric) {
	hints := GatherHints(metrics)
	if len(hints) == 0 {
		return
	}

	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, "Follow-up:")
	for _, h := range hints {
		fmt.Fprintf(f.writer, "  %s:\n", h.Metric)
		for _, s := range h.Suggestions {
			fmt.Fprintf(f.writer, "    %-24s %s\n", s.Command, s.Reason)
		}
	}
}

// renderTSV outputs metrics as tab-separated values.
func (f *Formatter) renderTSV(metrics []metric.Metric) error {
	// Header
	fmt.Fprintln(f.writer, "SECTION\tMETRIC\tVALUE\tRAW_VALUE\tSTATUS\tDETAIL\tSOURCE")

	for _, m := range metrics {
		fmt.Fprintf(f.writer, "%s\t%s\t%s\t%.4f\t%s\t%s\t%s\n",
			m.Section, m.Name, m.Value, m.RawValue,
			m.Status, m.Detail, m.Source)
	}

	return nil
}
