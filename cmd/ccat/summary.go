package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"ccat/internal/app"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// printSummary writes a short styled account of one run.
func printSummary(w io.Writer, res *app.Result, written []string) {
	var b strings.Builder

	b.WriteString(strings.Repeat("-", 40) + "\n")
	b.WriteString(titleStyle.Render("ccat") + " ")
	b.WriteString(statusStyle.Render(fmt.Sprintf("run %s, %d files, %d modules, %d edges in %v",
		res.RunID, len(res.Files), res.Graph.ModuleCount(), res.Graph.EdgeCount(),
		time.Since(res.GeneratedAt).Round(time.Millisecond))))
	b.WriteString("\n")

	if len(res.Ordering.BrokenEdges) > 0 {
		b.WriteString(cycleStyle.Render(fmt.Sprintf("%d import cycle edges broken:", len(res.Ordering.BrokenEdges))) + "\n")
		for _, e := range res.Ordering.BrokenEdges {
			b.WriteString(fmt.Sprintf("   %s -> %s\n", e.From, e.To))
		}
	} else {
		b.WriteString(successStyle.Render("No import cycles") + "\n")
	}

	if len(res.Suppressed) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d duplicate definitions suppressed", len(res.Suppressed))) + "\n")
	}
	if len(res.Applied) > 0 {
		b.WriteString(fmt.Sprintf("%d blocks summarized at level %s\n", len(res.Applied), res.Level))
	}
	if len(res.Diagnostics) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d files skipped:", len(res.Diagnostics))) + "\n")
		for _, d := range res.Diagnostics {
			b.WriteString(fmt.Sprintf("   %s: %s\n", d.Path, d.Message))
		}
	}
	for _, path := range written {
		b.WriteString(fmt.Sprintf("Wrote %s\n", path))
	}

	_, _ = io.WriteString(w, b.String())
}
