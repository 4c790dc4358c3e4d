package ui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF8C42")).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF8C42")).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ADE80")).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF8C42")).
			Padding(1, 2)

	AlertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFB84D")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(1, 3)

	// Busy dims the action bar while a request is in flight.
	BusyStyle = lipgloss.NewStyle().Faint(true)

	HeaderCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF8C42"))

	ConvertedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#14532D")).
				Foreground(lipgloss.Color("#DCFCE7"))

	NotConvertedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#78350F")).
				Foreground(lipgloss.Color("#FEF3C7"))

	SelectedRowStyle = lipgloss.NewStyle().
				Reverse(true).
				Bold(true)

	CursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF8C42")).
			Bold(true)
)
