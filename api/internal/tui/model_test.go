package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobtakir/api/internal/session"
	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/technique"
)

type instantSolver struct {
	mu       sync.Mutex
	problems []string
}

func (s *instantSolver) Solve(_ context.Context, problem string) (solver.Result, error) {
	s.mu.Lock()
	s.problems = append(s.problems, problem)
	s.mu.Unlock()
	return solver.Result{
		TechniqueID: "SCAMPER",
		Technique:   technique.Resolve("SCAMPER"),
		Analysis:    "analysis",
		Solutions: []solver.Solution{
			{Title: "Cups", Text: "deposit cups", Emoji: "♻️", Category: "ops"},
			{Title: "Discount", Text: "bring your own", Emoji: "💸", Category: "marketing"},
		},
	}, nil
}

type noTimers struct{}

type noTimer struct{}

func (noTimer) Stop() bool { return true }

func (noTimers) AfterFunc(time.Duration, func()) session.Timer { return noTimer{} }

func newModel(t *testing.T, opts ...session.Option) (Model, *session.Controller, *instantSolver) {
	t.Helper()
	s := &instantSolver{}
	ctrl := session.New(s, append([]session.Option{session.WithScheduler(noTimers{})}, opts...)...)
	t.Cleanup(ctrl.Close)
	return New(ctrl, WithStylePath("notty")), ctrl, s
}

func press(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func step(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = step(m, runes(string(r)))
	}
	return m
}

func waitReady(t *testing.T, ctrl *session.Controller) session.State {
	t.Helper()
	require.Eventually(t, func() bool { return ctrl.Snapshot().Phase == session.PhaseReady }, time.Second, 5*time.Millisecond)
	return ctrl.Snapshot()
}

func TestExampleKeysSubmit(t *testing.T) {
	m, ctrl, s := newModel(t)
	m = step(m, press(tea.KeyF2))
	ex, _ := technique.ExampleByID(2)
	assert.Equal(t, ex.Text, m.input.Value())

	waitReady(t, ctrl)
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Equal(t, []string{ex.Text}, s.problems)
}

func TestExampleKeysIgnoredWhileLoading(t *testing.T) {
	m, _, s := newModel(t)
	loading, _ := session.NewState().Apply(session.Submit{Text: "p"})
	m = step(m, stateMsg(loading))
	m = step(m, press(tea.KeyF3))

	assert.Empty(t, m.input.Value())
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.problems)
}

func TestSubmitAndRenderResult(t *testing.T) {
	m, ctrl, s := newModel(t)
	m = step(m, tea.WindowSizeMsg{Width: 100, Height: 80})
	m = typeText(m, "plastic")
	m = step(m, press(tea.KeyCtrlS))

	st := waitReady(t, ctrl)
	assert.Equal(t, []string{"plastic"}, s.problems)

	m = step(m, stateMsg(st))
	view := m.View()
	assert.Contains(t, view, "Cups")
	assert.Contains(t, view, "Discount")
	assert.Contains(t, view, session.MsgSolved)
}

func TestLoadingShowsCaption(t *testing.T) {
	m, _, _ := newModel(t)
	loading, _ := session.NewState().Apply(session.Submit{Text: "p"})
	m = step(m, stateMsg(loading))
	assert.Contains(t, m.View(), session.Captions()[0])
}

func TestSearchAndUseTechnique(t *testing.T) {
	m, ctrl, _ := newModel(t)
	m = step(m, press(tea.KeyTab))
	require.Equal(t, focusSearch, m.focus)

	m = typeText(m, "triz")
	require.NotEmpty(t, m.matches)
	assert.Equal(t, technique.ID("TRIZ"), m.matches[0].ID)

	m = step(m, press(tea.KeyEnter))
	assert.Equal(t, focusInput, m.focus)
	assert.Equal(t, technique.UsePrefix(technique.Resolve("TRIZ")), m.input.Value())

	notes := ctrl.Snapshot().Notifications
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, technique.Resolve("TRIZ").Name)
}

func TestResultCommands(t *testing.T) {
	var copied []string
	orig := clipboardWriteAll
	clipboardWriteAll = func(s string) error { copied = append(copied, s); return nil }
	t.Cleanup(func() { clipboardWriteAll = orig })

	m, ctrl, _ := newModel(t, session.WithClipboard(SystemClipboard{}))
	m = typeText(m, "p")
	m = step(m, press(tea.KeyCtrlS))
	m = step(m, stateMsg(waitReady(t, ctrl)))

	m = step(m, press(tea.KeyEsc))
	require.Equal(t, focusResult, m.focus)

	m = step(m, runes("c"))
	m = step(m, runes("2"))
	require.Eventually(t, func() bool {
		notes := ctrl.Snapshot().Notifications
		return notes[len(notes)-1].Message == session.MsgCopied
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"Discount\nbring your own"}, copied)

	m = step(m, runes("s"))
	m = step(m, runes("d"))
	notes := ctrl.Snapshot().Notifications
	assert.Equal(t, session.MsgShareSoon, notes[len(notes)-2].Message)
	assert.Equal(t, session.MsgDownloading, notes[len(notes)-1].Message)

	m = step(m, stateMsg(ctrl.Snapshot()))
	before := len(m.state.Notifications)
	m = step(m, runes("x"))
	assert.Len(t, ctrl.Snapshot().Notifications, before-1)

	m = step(m, runes("n"))
	assert.Equal(t, session.PhaseIdle, ctrl.Snapshot().Phase)
	assert.Empty(t, m.input.Value())
}

func TestClosedUpdatesQuit(t *testing.T) {
	m, _, _ := newModel(t)
	_, cmd := m.Update(closedMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestResultMarkdown(t *testing.T) {
	res, _ := (&instantSolver{}).Solve(context.Background(), "x")
	md := resultMarkdown("problem", res)
	assert.True(t, strings.HasPrefix(md, "## 🎯 problem"))
	assert.Contains(t, md, "### 1. ♻️ Cups")
	assert.Contains(t, md, "### 2. 💸 Discount")
}

func TestHelpFollowsFocus(t *testing.T) {
	m, _, _ := newModel(t)
	assert.Contains(t, m.View(), "ctrl+s")

	m = step(m, press(tea.KeyTab))
	assert.Contains(t, m.View(), "استخدام التقنية")

	m = step(m, press(tea.KeyEsc))
	m = step(m, press(tea.KeyEsc))
	require.Equal(t, focusResult, m.focus)
	m = step(m, runes("c"))
	assert.Contains(t, m.View(), "اختر رقم الحل")
}
