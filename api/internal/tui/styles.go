package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title    lipgloss.Style
	Box      lipgloss.Style
	Focused  lipgloss.Style
	Hint     lipgloss.Style
	Caption  lipgloss.Style
	Selected lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
}

func DefaultStyles() Styles {
	toast := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		Focused:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1),
		Hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Caption:  lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("99")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Success:  toast.BorderForeground(lipgloss.Color("42")),
		Error:    toast.BorderForeground(lipgloss.Color("196")),
		Info:     toast.BorderForeground(lipgloss.Color("39")),
	}
}
