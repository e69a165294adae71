package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/rowjay007/server-stats/pkg/metric"
)

// DumpRawMetrics outputs all gathered rows with raw values before threshold evaluation.
func DumpRawMetrics(w io.Writer, metrics []metric.Metric) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, debugTitle.Render("Raw Metrics Dump"))
	fmt.Fprintln(w, debugDim.Render(strings.Repeat("═", 85)))
	fmt.Fprintf(w, "  %s %s %s %s %s\n",
		debugHeader.Render("SECTION       "),
		debugHeader.Render("METRIC                  "),
		debugHeader.Render("RAW VALUE     "),
		debugHeader.Render("VALUE              "),
		debugHeader.Render("SOURCE    "))
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 85)))

	for _, m := range metrics {
		fmt.Fprintf(w, "  %-15s %-25s %-15.4f %-20s %s\n",
			m.Section, m.Name, m.RawValue, m.Value, debugDim.Render(m.Source))
	}
}
