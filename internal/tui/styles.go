package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/cramr/internal/study"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

var subjectColors = map[string]lipgloss.Color{
	"Math":             lipgloss.Color("#5B8DEF"),
	"Physics":          lipgloss.Color("#7C6CF2"),
	"Chemistry":        lipgloss.Color("#2EC4B6"),
	"Economics":        lipgloss.Color("#2ECC71"),
	"Biology":          lipgloss.Color("#F25F7A"),
	"English":          lipgloss.Color("#F5B83D"),
	"Spanish":          lipgloss.Color("#F39C12"),
	"Computer Science": lipgloss.Color("#A66CFF"),
}

func subjectColor(subject string) lipgloss.Color {
	if c, ok := subjectColors[subject]; ok {
		return c
	}
	return colorMuted
}

func subjectStyle(subject string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(subjectColor(subject))
}

func priorityStyle(p study.Priority) lipgloss.Style {
	switch p {
	case study.PriorityHigh:
		return errorStyle
	case study.PriorityMedium:
		return warningStyle
	}
	return mutedStyle
}

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Big numbers on the dashboard
	figureStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// Timetable cells
	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedCellStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(colorSubtle)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	accentStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	doneStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)
