// Package session drives one user's solve session: the phase machine, the
// rotating loading caption and the transient notifications.
//
// State.Apply is a pure reducer returning the next state plus the effects to
// run; Controller owns a State, runs the effects and publishes every new
// state on a single update channel.
package session

import (
	"mobtakir/api/internal/solver"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

type Notification struct {
	ID       int64
	Message  string
	Severity Severity
}

var captions = [...]string{
	"جاري تحليل سياق المشكلة...",
	"مسح موسوعة تقنيات التفكير الإبداعي...",
	"اختيار استراتيجية الابتكار الأنسب...",
	"توليد مسارات حل غير تقليدية...",
	"هندسة الحلول واختبار منطقيتها...",
	"صياغة المخرجات النهائية بذكاء...",
}

// Captions returns the loading captions in display order.
func Captions() []string {
	out := make([]string, len(captions))
	copy(out, captions[:])
	return out
}

// User-facing notification texts.
const (
	MsgEmptyInput   = "يرجى إدخال وصف للتحدي أولاً"
	MsgSolved       = "تم توليد الحلول الابتكارية بنجاح!"
	MsgSolveFailed  = "حدث خطأ أثناء محاولة الابتكار. يرجى المحاولة مرة أخرى."
	MsgNewSession   = "تم بدء جلسة جديدة"
	MsgCopied       = "تم نسخ الحل بنجاح"
	MsgCopyFailed   = "تعذر نسخ الحل"
	MsgShareSoon    = "ميزة المشاركة ستتوفر قريباً"
	MsgDownloading  = "جاري تحضير ملف النتائج..."
	msgChosenFormat = "تم اختيار %s، أكمل وصف مشكلتك"
)

// State is a value: Apply never mutates its receiver, and slices inside a
// published State are never written again.
type State struct {
	Phase       Phase
	ProblemText string
	Result      *solver.Result

	// Token identifies the current submission. It grows on every submit and
	// reset; solve outcomes carrying another token are stale.
	Token uint64

	CaptionIndex  int
	Notifications []Notification

	lastNotification int64
}

func NewState() State { return State{} }

func (s State) Caption() string { return captions[s.CaptionIndex] }

// Loading reports whether the submit affordance should be disabled.
func (s State) Loading() bool { return s.Phase == PhaseLoading }
