// Package users reports interactive login sessions.
package users

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/rowjay007/server-stats/pkg/metric"
)

const whoTimeout = 2 * time.Second

// session is one interactive login.
type session struct {
	user  string
	tty   string
	since string
	from  string
}

// Collector lists who is logged in.
type Collector struct {
	run func() (string, error)
}

// New creates a users collector backed by who(1).
func New() *Collector {
	return &Collector{run: runWho}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Users"
}

// Collect lists sessions with a single who invocation. A missing or
// failing utility degrades to an unknown row.
func (c *Collector) Collect(thresholds metric.Thresholds) ([]metric.Metric, error) {
	out, err := c.run()
	if err != nil {
		return []metric.Metric{{
			Section: "Users",
			Name:    "sessions",
			Value:   "unknown",
			Status:  metric.StatusUnknown,
			Detail:  err.Error(),
			Source:  "who",
		}}, nil
	}

	sessions := parseWho(out)
	distinct := distinctUsers(sessions)

	rows := make([]metric.Metric, 0, len(sessions)+1)
	rows = append(rows, metric.Metric{
		Section:  "Users",
		Name:     "sessions",
		Value:    fmt.Sprintf("%d (%d users)", len(sessions), len(distinct)),
		RawValue: float64(len(sessions)),
		Status:   metric.StatusOK,
		Detail:   strings.Join(distinct, " "),
		Source:   "who",
	})

	for _, s := range sessions {
		detail := "since " + s.since
		if s.from != "" {
			detail += " from " + s.from
		}
		rows = append(rows, metric.Metric{
			Section: "Users",
			Name:    s.user,
			Value:   s.tty,
			Status:  metric.StatusOK,
			Detail:  detail,
			Source:  "who",
		})
	}

	return rows, nil
}

// parseWho extracts sessions from who(1) output. The remote host, when
// present, is the final parenthesized field; everything between the tty
// and the host is the login time.
func parseWho(out string) []session {
	var sessions []session

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}

		s := session{user: fields[0], tty: fields[1]}
		rest := fields[2:]
		last := rest[len(rest)-1]
		if strings.HasPrefix(last, "(") && strings.HasSuffix(last, ")") {
			s.from = strings.Trim(last, "()")
			rest = rest[:len(rest)-1]
		}
		s.since = strings.Join(rest, " ")
		sessions = append(sessions, s)
	}

	return sessions
}

// distinctUsers returns the sorted set of usernames.
func distinctUsers(sessions []session) []string {
	seen := make(map[string]bool)
	var users []string
	for _, s := range sessions {
		if !seen[s.user] {
			seen[s.user] = true
			users = append(users, s.user)
		}
	}
	sort.Strings(users)
	return users
}

// runWho executes who(1) with a deadline.
func runWho() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), whoTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "who")
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}
