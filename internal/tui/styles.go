package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("124")).
			Padding(0, 1)

	dayHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Align(lipgloss.Center)

	todayHeaderStyle = dayHeaderStyle.
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("25"))

	hourStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Align(lipgloss.Right)

	listDayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

// palette holds the 8 course color slots; schedule.AssignColors indexes
// into it by slot number.
var palette = [8]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("61")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("36")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("168")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("39")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("205")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("115")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("182")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("69")),
}

// paletteDot mirrors palette as foreground-only styles for list bullets
// and the legend.
var paletteDot = [8]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("61")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("36")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("168")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("115")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("182")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
}
