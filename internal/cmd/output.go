package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/pathway/internal/pathway/engine"
	"github.com/kingrea/pathway/internal/sweep"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

func statusText(status engine.Status) string {
	if status == engine.StatusComplete {
		return okStyle.Render(string(status))
	}
	return badStyle.Render(string(status))
}

func renderResult(result engine.Result, path string) string {
	p := result.Plan
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(p.Label()))
	fmt.Fprintf(&b, "status: %s", statusText(result.Status))
	if result.Detail != "" {
		fmt.Fprintf(&b, " %s", dimStyle.Render("("+result.Detail+")"))
	}
	fmt.Fprintf(&b, "\nterms: %d  units: %.1f  unit floor met: %t  over two years: %t\n",
		len(p.Terms), p.TotalUnits, p.MeetsUnitFloor, p.OverTwoYears)
	for _, term := range p.Terms {
		fmt.Fprintf(&b, "  %-12s %5.1f  %s\n", term.Label, term.Units, strings.Join(term.CourseIDs(), ", "))
	}
	if len(p.Unmet) > 0 {
		fmt.Fprintf(&b, "unmet: %s\n", strings.Join(p.Unmet, ", "))
	}
	if len(p.Warnings) > 0 {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("%d warnings", len(p.Warnings))))
		for _, w := range p.Warnings {
			fmt.Fprintf(&b, "  %s\n", dimStyle.Render(w))
		}
	}
	if path != "" {
		fmt.Fprintf(&b, "saved: %s\n", path)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSweep(outcomes []sweep.Outcome) string {
	var b strings.Builder
	for _, out := range outcomes {
		label := fmt.Sprintf("%s -> %s (%s)", out.Source, strings.Join(out.Targets, "+"), out.Pattern)
		if out.Err != nil {
			fmt.Fprintf(&b, "%-40s %s %s\n", label, badStyle.Render("error"), dimStyle.Render(out.Err.Error()))
			continue
		}
		p := out.Result.Plan
		fmt.Fprintf(&b, "%-40s %s  %d terms  %.1f units\n", label, statusText(out.Result.Status), len(p.Terms), p.TotalUnits)
	}
	sum := sweep.Summarize(outcomes)
	fmt.Fprintf(&b, "%d planned: %d complete, %d stalled, %d aborted, %d failed",
		sum.Total, sum.Complete, sum.Stalled, sum.Aborted, sum.Failed)
	return b.String()
}
