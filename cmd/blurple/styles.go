package main

import "github.com/charmbracelet/lipgloss"

// Discord brand palette; the formatter is named for the blurple in it.
var (
	blurpleColor = lipgloss.Color("#5865F2")
	greenColor   = lipgloss.Color("#57F287")
	redColor     = lipgloss.Color("#ED4245")

	titleStyle = lipgloss.NewStyle().Foreground(blurpleColor).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(greenColor).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(redColor).Bold(true)
	pathStyle  = lipgloss.NewStyle().Foreground(blurpleColor)
)
