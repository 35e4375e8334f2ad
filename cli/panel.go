package cli

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/tutorial"
)

const (
	glyphDone    = "✓"
	glyphCurrent = "▸"
	glyphPending = "○"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
)

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	panelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	stageDone = lipgloss.NewStyle().
			Foreground(colorGreen)

	stageCurrent = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	stagePending = lipgloss.NewStyle().
			Foreground(colorDim)

	detailLabel = lipgloss.NewStyle().
			Foreground(colorDim)
)

// RenderSnapshot draws the run status: every stage with its progress glyph
// and the active workflow's substate and flags.
func RenderSnapshot(title string, snap stagehand.Snapshot, stages []stagehand.Stage) string {
	lines := []string{panelTitle.Render(title), ""}

	for _, stage := range stages {
		switch {
		case slices.Contains(snap.Completed, stage):
			lines = append(lines, stageDone.Render(glyphDone+" "+string(stage)))
		case stage == snap.Stage:
			lines = append(lines, stageCurrent.Render(glyphCurrent+" "+string(stage)))
		default:
			lines = append(lines, stagePending.Render(glyphPending+" "+string(stage)))
		}
	}

	lines = append(lines, "", detail("ticks", fmt.Sprint(snap.Ticks)))
	if snap.Workflow != "" {
		lines = append(lines, detail("workflow", string(snap.Workflow)))
		lines = append(lines, detail("substate", snap.Substate))
	} else {
		lines = append(lines, detail("workflow", "none"))
	}
	if len(snap.Flags) > 0 {
		names := make([]string, 0, len(snap.Flags))
		for name, set := range snap.Flags {
			names = append(names, fmt.Sprintf("%s=%t", name, set))
		}
		sort.Strings(names)
		lines = append(lines, detail("flags", strings.Join(names, " ")))
	}

	return panelBorder.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderOutlines lists every stage with its substates in run order.
func RenderOutlines(outlines []tutorial.Outline) string {
	blocks := make([]string, 0, len(outlines))
	for i, o := range outlines {
		lines := []string{panelTitle.Render(fmt.Sprintf("%d. %s", i+1, o.Stage))}
		lines = append(lines, detail("next", string(o.Next)))
		lines = append(lines, detail("substates", strings.Join(o.Substates, ", ")))
		if len(o.Flags) > 0 {
			lines = append(lines, detail("flags", strings.Join(o.Flags, ", ")))
		}
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, intersperse(blocks, "")...)
}

func detail(label, value string) string {
	return detailLabel.Render(label+":") + " " + value
}

func intersperse(items []string, sep string) []string {
	out := make([]string, 0, 2*len(items))
	for i, item := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, item)
	}
	return out
}
