// Package tui is the terminal front-end: one page with the problem input,
// example prompts, the technique search, the loading caption, the result
// and a stack of toasts, all driven by a session.Controller.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"mobtakir/api/internal/session"
	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/technique"
)

type focus int

const (
	focusInput focus = iota
	focusSearch
	focusResult
)

const searchRows = 6

// stateMsg carries a controller snapshot into the update loop.
type stateMsg session.State

type closedMsg struct{}

func waitForUpdate(ch <-chan session.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return stateMsg(st)
	}
}

type Model struct {
	ctrl   *session.Controller
	state  session.State
	styles Styles

	input   textarea.Model
	search  textinput.Model
	matches []technique.Descriptor
	cursor  int
	focus   focus
	spin    spinner.Model
	result  viewport.Model
	help    help.Model

	stylePath     string
	md            *glamour.TermRenderer
	renderedToken uint64
	copyArmed     bool

	width, height int
}

type Option func(*Model)

// WithStylePath picks the glamour style used for the result ("dark",
// "light", "notty", ...).
func WithStylePath(path string) Option { return func(m *Model) { m.stylePath = path } }

func New(ctrl *session.Controller, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = "صف التحدي الذي تواجهه... (Ctrl+S للتحليل)"
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(4)
	ta.Focus()

	ti := textinput.New()
	ti.Placeholder = "ابحث في التقنيات..."
	ti.CharLimit = 100
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctrl:      ctrl,
		state:     ctrl.Snapshot(),
		styles:    DefaultStyles(),
		input:     ta,
		search:    ti,
		matches:   technique.All(),
		spin:      sp,
		result:    viewport.New(80, 12),
		help:      help.New(),
		stylePath: "dark",
	}
	for _, o := range opts {
		o(&m)
	}
	m.spin.Style = m.styles.Caption
	m.md = m.newRenderer(80)
	m.result.SetContent(m.styles.Hint.Render("لا توجد نتائج بعد."))
	return m
}

func (m Model) newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.stylePath),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick, waitForUpdate(m.ctrl.Updates()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := max(msg.Width-4, 20)
		m.input.SetWidth(w)
		m.result.Width = w
		m.result.Height = max(msg.Height-18, 5)
		m.help.Width = msg.Width
		m.md = m.newRenderer(w)
		m.renderedToken = 0
		m.syncResult()
		return m, nil

	case stateMsg:
		m.state = session.State(msg)
		m.syncResult()
		return m, waitForUpdate(m.ctrl.Updates())

	case closedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusResult:
			return m.updateResult(msg)
		default:
			return m.updateInput(msg)
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Submit):
		if !m.state.Loading() {
			_ = m.ctrl.Submit(m.input.Value())
		}
		return m, nil
	case key.Matches(msg, keys.Example):
		if ex, ok := technique.ExampleByID(int(msg.String()[1] - '0')); ok && !m.state.Loading() {
			m.input.SetValue(ex.Text)
			_ = m.ctrl.Submit(ex.Text)
		}
		return m, nil
	case key.Matches(msg, keys.Search):
		return m.focusOn(focusSearch)
	case key.Matches(msg, keys.Results):
		return m.focusOn(focusResult)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		return m.focusOn(focusInput)
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.matches)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.Use):
		if len(m.matches) == 0 {
			return m, nil
		}
		d := m.matches[m.cursor]
		m.input.SetValue(technique.UsePrefix(d))
		m.input.CursorEnd()
		m.ctrl.ChooseTechnique(d.ID)
		return m.focusOn(focusInput)
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.matches = technique.Search(m.search.Value())
	if m.cursor >= len(m.matches) {
		m.cursor = max(len(m.matches)-1, 0)
	}
	return m, cmd
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.copyArmed {
		m.copyArmed = false
		if k := msg.String(); len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			m.ctrl.Copy(int(k[0] - '1'))
			return m, nil
		}
	}
	switch {
	case key.Matches(msg, keys.Copy):
		m.copyArmed = true
	case key.Matches(msg, keys.Share):
		m.ctrl.Share()
	case key.Matches(msg, keys.Download):
		m.ctrl.Download()
	case key.Matches(msg, keys.New):
		m.ctrl.Reset()
		m.input.Reset()
	case key.Matches(msg, keys.Dismiss):
		if n := len(m.state.Notifications); n > 0 {
			m.ctrl.Dismiss(m.state.Notifications[n-1].ID)
		}
	case key.Matches(msg, keys.Write):
		return m.focusOn(focusInput)
	case key.Matches(msg, keys.Search):
		return m.focusOn(focusSearch)
	case key.Matches(msg, keys.Exit):
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.result, cmd = m.result.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) focusOn(f focus) (tea.Model, tea.Cmd) {
	m.focus = f
	m.copyArmed = false
	m.input.Blur()
	m.search.Blur()
	switch f {
	case focusInput:
		return m, m.input.Focus()
	case focusSearch:
		return m, m.search.Focus()
	}
	return m, nil
}

// syncResult re-renders the result pane when a new result arrives or the
// old one is gone.
func (m *Model) syncResult() {
	st := m.state
	if st.Phase != session.PhaseReady || st.Result == nil {
		if m.renderedToken != 0 {
			m.renderedToken = 0
			m.result.SetContent(m.styles.Hint.Render("لا توجد نتائج بعد."))
		}
		return
	}
	if m.renderedToken == st.Token {
		return
	}
	m.renderedToken = st.Token

	md := resultMarkdown(st.ProblemText, *st.Result)
	out := md
	if m.md != nil {
		if rendered, err := m.md.Render(md); err == nil {
			out = rendered
		}
	}
	m.result.SetContent(out)
	m.result.GotoTop()
}

func resultMarkdown(problem string, res solver.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## 🎯 %s\n\n", problem)
	fmt.Fprintf(&b, "**%s %s**\n\n", res.Technique.Icon, res.Technique.Name)
	fmt.Fprintf(&b, "> %s\n\n", res.Analysis)
	for i, s := range res.Solutions {
		fmt.Fprintf(&b, "### %d. %s %s\n\n*%s*\n\n%s\n\n", i+1, s.Emoji, s.Title, s.Category, s.Text)
	}
	return b.String()
}
