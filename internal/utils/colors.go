package utils

import "github.com/charmbracelet/lipgloss"

var (
	cyan        = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	green       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellow      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	red         = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	brightWhite = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	bold        = lipgloss.NewStyle().Bold(true)
	dim         = lipgloss.NewStyle().Faint(true)
)

func Cyan(text string) string        { return cyan.Render(text) }
func Green(text string) string       { return green.Render(text) }
func Yellow(text string) string      { return yellow.Render(text) }
func Red(text string) string         { return red.Render(text) }
func BrightWhite(text string) string { return brightWhite.Render(text) }
func Bold(text string) string        { return bold.Render(text) }
func Dim(text string) string         { return dim.Render(text) }
