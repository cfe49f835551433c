package ui

import "github.com/charmbracelet/lipgloss"

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")) // Light purple

	BorderColor = lipgloss.Color("62") // Soft blue

	OneShotStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))  // Cyan
	RecurringStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114")) // Green
	PausedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("222"))
	CompletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
