package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/pathway/internal/pathway"
)

var (
	labelStyleReady   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	labelStyleBlocked = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	labelStyleMajor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	labelStyleGE      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	labelStyleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	labelStyleDefault = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	termHeaderStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	detailTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// planView renders one exported plan.
type planView struct {
	plan pathway.Plan
}

func newPlanView(plan pathway.Plan) *planView {
	return &planView{plan: plan}
}

// Render lays the plan out for the given width.
func (v *planView) Render(width int) string {
	p := v.plan
	lines := []string{
		fmt.Sprintf("%s · Status: %s", p.Label(), labelStyleForStatus(p.Status).Render(friendlyLabel(p.Status))),
	}
	if p.Reason != "" {
		lines = append(lines, detailTextStyle.Render(p.Reason))
	}
	floor := labelStyleReady.Render("met")
	if !p.MeetsUnitFloor {
		floor = labelStyleBlocked.Render("not met")
	}
	pace := labelStyleReady.Render("within two years")
	if p.OverTwoYears {
		pace = labelStyleBlocked.Render("over two years")
	}
	lines = append(lines,
		fmt.Sprintf("Terms: %d · Units: %.1f · Unit floor %s · %s", len(p.Terms), p.TotalUnits, floor, pace),
		"",
	)
	for _, term := range p.Terms {
		lines = append(lines, termHeaderStyle.Render(fmt.Sprintf("%s (%.1f units)", term.Label, term.Units)))
		for _, c := range term.Courses {
			lines = append(lines, renderCourseLine(c, width))
		}
		lines = append(lines, "")
	}
	if len(p.Unmet) > 0 {
		lines = append(lines, labelStyleBlocked.Render("Unmet"))
		for _, id := range p.Unmet {
			lines = append(lines, "  "+id)
		}
		lines = append(lines, "")
	}
	if len(p.Warnings) > 0 {
		lines = append(lines, labelStyleGE.Render(fmt.Sprintf("Warnings (%d)", len(p.Warnings))))
		for _, w := range p.Warnings {
			lines = append(lines, detailTextStyle.Render("  "+w))
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func renderCourseLine(c pathway.PlannedCourse, width int) string {
	kind := labelStyleForKind(c.Kind).Render(fmt.Sprintf("[%s]", friendlyLabel(string(c.Kind))))
	line := fmt.Sprintf("  %-14s %5.1f  %s", c.ID, c.Units, kind)
	if c.Fulfills != "" {
		line += " " + detailTextStyle.Render(c.Fulfills)
	}
	if width > 0 && lipgloss.Width(line) > width {
		return lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

func labelStyleForKind(kind pathway.Kind) lipgloss.Style {
	switch kind {
	case pathway.KindMajor, pathway.KindUnlocker:
		return labelStyleMajor
	case pathway.KindGE:
		return labelStyleGE
	case pathway.KindElective:
		return labelStyleSkipped
	default:
		return labelStyleDefault
	}
}

func labelStyleForStatus(status string) lipgloss.Style {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "complete":
		return labelStyleReady
	case "stalled", "safety_aborted":
		return labelStyleBlocked
	default:
		return labelStyleDefault
	}
}

func friendlyLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	replacer := strings.NewReplacer("_", " ", "-", " ")
	words := strings.Fields(replacer.Replace(strings.ToLower(value)))
	if len(words) == 0 {
		return ""
	}
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
