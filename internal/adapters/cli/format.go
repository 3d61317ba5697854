// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

const rule = "────────────────────────────────────────────────────────────────"

var (
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	red     = color.New(color.FgRed)
	cyan    = color.New(color.FgCyan)
	magenta = color.New(color.FgHiMagenta)
	faint   = color.New(color.Faint)
)

// colorStatus renders a task or run status in a color matching its urgency.
func colorStatus(status string) string {
	switch status {
	case "done", "completed":
		return green.Sprint(status)
	case "in_progress":
		return cyan.Sprint(status)
	case "blocked", "failed", "needs_approval":
		return red.Sprint(status)
	case "paused", "planned", "deferred":
		return yellow.Sprint(status)
	case "cancelled":
		return faint.Sprint(status)
	default:
		return status
	}
}

// colorDecision renders a guardrail decision.
func colorDecision(decision string) string {
	switch decision {
	case "allow":
		return green.Sprint(decision)
	case "block":
		return red.Sprint(decision)
	case "needs_approval":
		return yellow.Sprint(decision)
	default:
		return decision
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// writeMap prints a JSON-ish bag as sorted key: value lines.
func writeMap(out io.Writer, label string, m map[string]any) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(out, "%s:\n", label)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %v\n", k, m[k])
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
