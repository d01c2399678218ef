package memory

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("#FFB3BA")
	secondary = lipgloss.Color("#FFCCCB")
	success   = lipgloss.Color("#A8E6CF")
	muted     = lipgloss.Color("#6B7280")
	text      = lipgloss.Color("#F9FAFB")
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, true, false, false).
			BorderForeground(muted).
			Padding(0, 1)

	mainStyle = lipgloss.NewStyle().
			Padding(0, 2)

	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	countStyle = lipgloss.NewStyle().
			Foreground(muted)

	itemStyle = lipgloss.NewStyle().
			Foreground(text)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(accent).
				Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(secondary)

	dateStyle = lipgloss.NewStyle().
			Foreground(muted)

	titleStyle = lipgloss.NewStyle().
			Foreground(text).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)

	starStyle = lipgloss.NewStyle().
			Foreground(success)

	errorStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)
)
