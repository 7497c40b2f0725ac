// Package summary renders the human-readable terminal report printed on
// exit. It is deliberately non-interactive — no alt-screen, no input
// handling — styled with lipgloss the way the teacher's UI theme styled its
// interactive dashboard, scoped down to static output.
package summary

import (
	"fmt"
	"strings"
	"time"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/ralph-core/ralph-core/internal/metrics"
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CC66")).Bold(true)
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3030")).Bold(true)
	styleAborted = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9B9B9B"))
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "complete":
		return styleSuccess
	case "failed":
		return styleFailed
	case "aborted":
		return styleAborted
	default:
		return styleMuted
	}
}

// Render builds the exit report for doc's summary and (when present) its
// orchestration verdict.
func Render(doc metrics.Document) string {
	var b strings.Builder

	fmt.Fprintln(&b, styleHeading.Render("Run summary"))
	fmt.Fprintf(&b, "  run:        %s\n", doc.Summary.RunID)
	fmt.Fprintf(&b, "  agent:      %s\n", doc.Summary.AgentTag)
	fmt.Fprintf(&b, "  status:     %s\n", statusStyle(doc.Summary.FinalStatus).Render(doc.Summary.FinalStatus))
	if doc.Summary.FinalReason != "" {
		fmt.Fprintf(&b, "  reason:     %s\n", doc.Summary.FinalReason)
	}
	fmt.Fprintf(&b, "  duration:   %s\n", humanize.RelTime(doc.Summary.StartedAt, doc.Summary.EndedAt, "", ""))
	fmt.Fprintf(&b, "  iterations: %d\n", doc.Summary.Iterations)
	fmt.Fprintf(&b, "  tokens:     %s in / %s out\n",
		humanize.Comma(int64(doc.Summary.TotalTokensIn)),
		humanize.Comma(int64(doc.Summary.TotalTokensOut)))
	fmt.Fprintf(&b, "  cost:       $%.4f\n", doc.Summary.TotalCost)

	if doc.Orchestration != nil && doc.Orchestration.Enabled {
		fmt.Fprintln(&b, styleHeading.Render("\nOrchestration"))
		fmt.Fprintf(&b, "  verdict: %s\n", doc.Orchestration.Results.Verdict)
		fmt.Fprintf(&b, "  summary: %s\n", doc.Orchestration.Results.Summary)
	}

	return b.String()
}

// Duration is a small helper kept for callers that want a plain duration
// string instead of the relative-time phrasing Render uses.
func Duration(start, end time.Time) string {
	return end.Sub(start).String()
}
