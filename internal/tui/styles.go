// Package tui provides the terminal user interface: an options form shown
// before a run and a live run view with progress and log lines.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorBrand  = lipgloss.Color("#F5A623")
	colorMuted  = lipgloss.Color("#6C6C6C")
	colorError  = lipgloss.Color("#FF5F5F")
	colorActive = lipgloss.Color("#5FD7FF")

	TitleStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Bold(true)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(colorActive).
				Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	LogStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(colorMuted).
			PaddingTop(1)
)
