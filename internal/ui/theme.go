package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#4F9DDE")

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#828282")).
			Padding(0, 1)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	AccentStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)
)
