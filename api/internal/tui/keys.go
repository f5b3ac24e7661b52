package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit key.Binding

	// input pane
	Submit  key.Binding
	Example key.Binding
	Search  key.Binding
	Results key.Binding

	// search pane
	Up   key.Binding
	Down key.Binding
	Use  key.Binding
	Back key.Binding

	// result pane
	Copy     key.Binding
	Share    key.Binding
	Download key.Binding
	New      key.Binding
	Dismiss  key.Binding
	Write    key.Binding
	Exit     key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "خروج"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "تحليل"),
	),
	Example: key.NewBinding(
		key.WithKeys("f1", "f2", "f3", "f4"),
		key.WithHelp("F1-F4", "أمثلة"),
	),
	Search: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "بحث"),
	),
	Results: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "أوامر النتائج"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "أعلى"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "أسفل"),
	),
	Use: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "استخدام التقنية"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "tab"),
		key.WithHelp("esc", "رجوع"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c+رقم", "نسخ"),
	),
	Share: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "مشاركة"),
	),
	Download: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "تنزيل"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "تحدٍّ جديد"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "إغلاق التنبيه"),
	),
	Write: key.NewBinding(
		key.WithKeys("i", "enter"),
		key.WithHelp("i", "كتابة"),
	),
	Exit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "خروج"),
	),
}

func (k keyMap) inputHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Example, k.Search, k.Results, k.Quit}
}

func (k keyMap) searchHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Use, k.Back}
}

func (k keyMap) resultHelp() []key.Binding {
	return []key.Binding{k.Copy, k.Share, k.Download, k.New, k.Dismiss, k.Write, k.Exit}
}
