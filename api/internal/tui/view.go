package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mobtakir/api/internal/session"
	"mobtakir/api/internal/technique"
)

func (m Model) View() string {
	var sections []string

	sections = append(sections, m.styles.Title.Render("💡 مُبتكِر: حلول إبداعية لتحدياتك"))
	sections = append(sections, m.boxed(m.focus == focusInput, m.input.View()))
	sections = append(sections, m.examplesLine())
	sections = append(sections, m.boxed(m.focus == focusSearch, m.searchView()))

	if m.state.Loading() {
		sections = append(sections, m.spin.View()+" "+m.styles.Caption.Render(m.state.Caption()))
	} else {
		sections = append(sections, m.boxed(m.focus == focusResult, m.result.View()))
	}

	sections = append(sections, m.helpLine())
	if toasts := m.toastsView(); toasts != "" {
		sections = append(sections, m.placeRight(toasts))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) boxed(focused bool, s string) string {
	if focused {
		return m.styles.Focused.Render(s)
	}
	return m.styles.Box.Render(s)
}

func (m Model) examplesLine() string {
	var parts []string
	for _, e := range technique.Examples() {
		parts = append(parts, fmt.Sprintf("F%d %s", e.ID, e.Text))
	}
	return m.styles.Hint.Render(strings.Join(parts, "  ·  "))
}

func (m Model) searchView() string {
	var b strings.Builder
	b.WriteString(m.search.View())
	start := 0
	if m.cursor >= searchRows {
		start = m.cursor - searchRows + 1
	}
	for i := start; i < len(m.matches) && i < start+searchRows; i++ {
		d := m.matches[i]
		line := fmt.Sprintf("%s %s", d.Icon, d.Name)
		b.WriteString("\n")
		if m.focus == focusSearch && i == m.cursor {
			b.WriteString(m.styles.Selected.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
	}
	if len(m.matches) == 0 {
		b.WriteString("\n" + m.styles.Hint.Render("لا توجد تقنيات مطابقة"))
	}
	return b.String()
}

func (m Model) helpLine() string {
	switch m.focus {
	case focusSearch:
		return m.help.ShortHelpView(keys.searchHelp())
	case focusResult:
		if m.copyArmed {
			return m.styles.Hint.Render("اختر رقم الحل للنسخ (1-9)")
		}
		return m.help.ShortHelpView(keys.resultHelp())
	default:
		return m.help.ShortHelpView(keys.inputHelp())
	}
}

func (m Model) toastsView() string {
	if len(m.state.Notifications) == 0 {
		return ""
	}
	toasts := make([]string, 0, len(m.state.Notifications))
	for _, n := range m.state.Notifications {
		toasts = append(toasts, m.toastStyle(n.Severity).Render(n.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, toasts...)
}

func (m Model) toastStyle(s session.Severity) lipgloss.Style {
	switch s {
	case session.SeveritySuccess:
		return m.styles.Success
	case session.SeverityError:
		return m.styles.Error
	default:
		return m.styles.Info
	}
}

func (m Model) placeRight(s string) string {
	if m.width == 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, s)
}
