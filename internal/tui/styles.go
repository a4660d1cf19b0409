package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorPrimary   = "#B794F6"
	colorAccent    = "#F6AD55"
	colorSuccess   = "#48BB78"
	colorError     = "#F56565"
	colorInfo      = "#718096"
	colorHighlight = "#FAFAFA"
	colorBorder    = "#6B46C1"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginTop(1).
			MarginBottom(1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent))

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(1, 2)

	FocusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorHighlight)).
			Background(lipgloss.Color(colorBorder))

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorHighlight)).
			Background(lipgloss.Color(colorPrimary)).
			Padding(0, 1)
)
