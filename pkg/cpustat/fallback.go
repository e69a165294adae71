package cpustat

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// utilityTimeout bounds the one-shot fallback invocation.
const utilityTimeout = 2 * time.Second

var (
	// Explicit "busy 42.0%" or "42.0% busy" token, either order.
	busyLeadRe  = regexp.MustCompile(`(?i)\bbusy\b[^0-9]*([0-9]+(?:\.[0-9]+)?)\s*%`)
	busyTrailRe = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*%\s*busy\b`)
	// Idle share as printed by top(1) summaries, e.g. "95.5 id",
	// "90.0%id" or "79.31% idle". Busy is the complement.
	idleTokenRe = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*%?\s*id(?:le)?\b`)
)

// EstimateBusy invokes the platform's process status utility once and
// extracts an aggregate busy percentage from its CPU summary line.
// Invocation failures wrap ErrUnavailable; output with no recognizable
// summary wraps ErrParse.
func EstimateBusy() (float64, error) {
	if len(summaryCommand) == 0 {
		return 0, fmt.Errorf("%w: no summary utility on this platform", ErrUnavailable)
	}
	out, err := runUtility(utilityTimeout, summaryCommand[0], summaryCommand[1:]...)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, summaryCommand[0], err)
	}
	return ScanSummary(out)
}

// ScanSummary returns the busy percentage from the first line of out
// that parses as a CPU summary.
func ScanSummary(out string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		if busy, err := ParseSummary(scanner.Text()); err == nil {
			return busy, nil
		}
	}
	return 0, fmt.Errorf("%w: no summary line in %d bytes of utility output", ErrParse, len(out))
}

// ParseSummary extracts an aggregate busy percentage from one summary
// line. An explicit busy token wins; otherwise a top style idle share
// on a cpu line is inverted. Anything else is ErrParse.
func ParseSummary(line string) (float64, error) {
	if m := busyLeadRe.FindStringSubmatch(line); m != nil {
		return parsePercent(m[1])
	}
	if m := busyTrailRe.FindStringSubmatch(line); m != nil {
		return parsePercent(m[1])
	}
	if strings.Contains(strings.ToLower(line), "cpu") {
		if m := idleTokenRe.FindStringSubmatch(line); m != nil {
			idle, err := parsePercent(m[1])
			if err != nil {
				return 0, err
			}
			return 100 - idle, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrParse, line)
}

func parsePercent(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, tok)
	}
	return clampPercent(v), nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// runUtility executes a command with a deadline and a C locale so the
// summary keeps its expected number format.
func runUtility(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// summaryOrigin names the fallback utility for sample provenance.
func summaryOrigin() string {
	if len(summaryCommand) == 0 {
		return "none"
	}
	return strings.Join(summaryCommand, " ")
}
