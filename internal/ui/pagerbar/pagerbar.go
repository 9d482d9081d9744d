// Package pagerbar renders page navigation and the page-size selector.
package pagerbar

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/commentbox/internal/pager"
)

var (
	currentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#4F9DDE")).Bold(true).Padding(0, 1)
	pageStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).Padding(0, 1)
	gapStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Padding(0, 1)
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")).Padding(0, 1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
)

// Pages renders prev, the page window around current and next. Prev and
// next are dimmed at the edges.
func Pages(current, totalPages, window int) string {
	parts := []string{arrow("‹ prev", current > 1)}
	for _, d := range pager.Window(current, totalPages, window) {
		switch {
		case d.Gap:
			parts = append(parts, gapStyle.Render("…"))
		case d.Page == current:
			parts = append(parts, currentStyle.Render(strconv.Itoa(d.Page)))
		default:
			parts = append(parts, pageStyle.Render(strconv.Itoa(d.Page)))
		}
	}
	parts = append(parts, arrow("next ›", current < totalPages))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func arrow(label string, enabled bool) string {
	if enabled {
		return enabledStyle.Render(label)
	}
	return disabledStyle.Render(label)
}

// SizeLabel is the selector label for a page size.
func SizeLabel(size int) string {
	if size == pager.Unbounded {
		return "all"
	}
	return strconv.Itoa(size)
}

// Sizes renders the page-size choices with the active one highlighted.
func Sizes(sizes []int, active int) string {
	var sb strings.Builder
	sb.WriteString(labelStyle.Render("per page:"))
	for _, s := range sizes {
		if s == active {
			sb.WriteString(currentStyle.Render(SizeLabel(s)))
		} else {
			sb.WriteString(pageStyle.Render(SizeLabel(s)))
		}
	}
	return sb.String()
}

// NextSize returns the size after current in sizes, wrapping around. An
// unknown current selects the first size.
func NextSize(sizes []int, current int) int {
	if len(sizes) == 0 {
		return current
	}
	for i, s := range sizes {
		if s == current {
			return sizes[(i+1)%len(sizes)]
		}
	}
	return sizes[0]
}
