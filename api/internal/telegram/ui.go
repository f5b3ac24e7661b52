package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mobtakir/api/internal/session"
	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/store"
	"mobtakir/api/internal/technique"
	"mobtakir/api/internal/util"
)

const welcomeText = `مرحباً بك في مُبتكِر 💡
صف التحدي الذي تواجهه في رسالة، وسأختار له أنسب تقنية تفكير إبداعي وأقترح خمسة حلول مبتكرة.

جرّب أحد الأمثلة أدناه، أو استعرض التقنيات عبر /techniques.
/new يبدأ جلسة جديدة، و /engine يعرض المحرك الحالي.`

// Telegram caps a button label well below this; longer examples are cut.
const buttonLabelMax = 60

func examplesKeyboard(examples []technique.Example) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(examples))
	for _, e := range examples {
		btn := tgbotapi.NewInlineKeyboardButtonData(util.Truncate(e.Text, buttonLabelMax), "ex:"+strconv.Itoa(e.ID))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func techniquesKeyboard(list []technique.Descriptor) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, (len(list)+1)/2)
	for i := 0; i < len(list); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{techniqueButton(list[i])}
		if i+1 < len(list) {
			row = append(row, techniqueButton(list[i+1]))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func techniqueButton(d technique.Descriptor) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(d.Icon+" "+d.Name, "use:"+string(d.ID))
}

func resultKeyboard(solutions int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var copyRow []tgbotapi.InlineKeyboardButton
	for i := 0; i < solutions; i++ {
		copyRow = append(copyRow, tgbotapi.NewInlineKeyboardButtonData("📋 "+strconv.Itoa(i+1), "copy:"+strconv.Itoa(i)))
		if len(copyRow) == 5 {
			rows = append(rows, copyRow)
			copyRow = nil
		}
	}
	if len(copyRow) > 0 {
		rows = append(rows, copyRow)
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔗 مشاركة", "share"),
			tgbotapi.NewInlineKeyboardButtonData("⬇️ تنزيل", "download"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆕 تحدٍّ جديد", "reset"),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func dismissKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖", "dismiss:"+strconv.FormatInt(id, 10)),
	))
}

func severityIcon(s session.Severity) string {
	switch s {
	case session.SeveritySuccess:
		return "✅"
	case session.SeverityError:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func formatResult(problem string, res solver.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎯 التحدي: %s\n\n", problem)
	fmt.Fprintf(&b, "%s التقنية: %s\n", res.Technique.Icon, res.Technique.Name)
	fmt.Fprintf(&b, "🧠 التحليل: %s\n", res.Analysis)
	for i, s := range res.Solutions {
		fmt.Fprintf(&b, "\n%d. %s %s [%s]\n%s\n", i+1, s.Emoji, s.Title, s.Category, s.Text)
	}
	return b.String()
}

func formatTechniques(list []technique.Descriptor) string {
	var b strings.Builder
	b.WriteString("تقنيات التفكير الإبداعي:\n")
	for _, d := range list {
		fmt.Fprintf(&b, "\n%s %s\n%s\n", d.Icon, d.Name, d.Description)
	}
	b.WriteString("\nاختر تقنية ثم أكمل وصف مشكلتك.")
	return util.Truncate(b.String(), 3900)
}

func formatStats(stats []store.TechniqueStat) string {
	if len(stats) == 0 {
		return "لا توجد حلول مسجلة خلال آخر 30 يوماً."
	}
	var b strings.Builder
	b.WriteString("📊 التقنيات الأكثر استخداماً (30 يوماً):\n")
	for _, s := range stats {
		d := technique.Resolve(technique.ID(s.TechniqueID))
		fmt.Fprintf(&b, "%s %s: %d", d.Icon, d.Name, s.Count)
		if s.Repaired > 0 {
			fmt.Fprintf(&b, " (%d مُصحّحة)", s.Repaired)
		}
		b.WriteString("\n")
	}
	return b.String()
}
