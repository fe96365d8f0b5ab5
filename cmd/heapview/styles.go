package main

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#00D7FF")
	successColor   = lipgloss.Color("#04B575")
	warningColor   = lipgloss.Color("#FFA500")
	errorColor     = lipgloss.Color("#FF4B4B")
	mutedColor     = lipgloss.Color("#666666")
	borderColor    = lipgloss.Color("#383838")

	// Header styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Background(lipgloss.Color("#1A1A1A")).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true)

	// Pane styles
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	// Block map cells
	allocCellStyle   = lipgloss.NewStyle().Foreground(primaryColor)
	freeCellStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	touchedCellStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)

	// Block table styles
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	tableSelectedStyle = lipgloss.NewStyle().
				Foreground(warningColor).
				Bold(true)

	// Status bar styles
	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Background(lipgloss.Color("#1A1A1A")).
			Padding(0, 1)

	statusCountStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	// Help overlay styles
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2).
			Background(lipgloss.Color("#1A1A1A"))

	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Error styles
	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)
