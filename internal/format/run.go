package format

import (
	"fmt"
	"strings"
	"time"

	"sm-kiosk/internal/model"
)

// maxCommandWidth truncates commands in history tables.
const maxCommandWidth = 24

// FormatRun produces a human-readable summary of one pipeline run.
func FormatRun(r *model.Run) string {
	var b strings.Builder

	b.WriteString("=== Flash Run ===\n")
	b.WriteString(fmt.Sprintf("Started:         %s\n", r.StartedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Command:         %s\n", r.Command))
	if r.Message != "" {
		b.WriteString(fmt.Sprintf("Message:         %q\n", r.Message))
	}

	if d := r.Duration(); d > 0 {
		b.WriteString(fmt.Sprintf("Duration:        %s\n", FormatDuration(d)))
	}
	b.WriteString(fmt.Sprintf("Outcome:         %s\n", r.Outcome))

	if r.Error != "" {
		b.WriteString(fmt.Sprintf("\nError: %s\n", r.Error))
	}
	b.WriteString("=================")
	return b.String()
}

// FormatRunHeader returns the header line for FormatRunLine.
func FormatRunHeader() string {
	return fmt.Sprintf("%-19s  %-*s  %-8s  %8s  %s", "Started", maxCommandWidth, "Command", "Outcome", "Duration", "Status")
}

// FormatRunLine produces a single table row for a run.
func FormatRunLine(r *model.Run) string {
	duration := "-"
	if d := r.Duration(); d > 0 {
		duration = FormatDuration(d)
	}
	return fmt.Sprintf("%-19s  %-*s  %-8s  %8s  %s",
		r.StartedAt.Format("2006-01-02 15:04:05"),
		maxCommandWidth, truncate(r.Command, maxCommandWidth),
		r.Outcome, duration, r.Status())
}

// FormatDuration renders d with a precision that suits flash runs.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
