package session

import (
	"fmt"
	"strings"

	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/technique"
)

// Event is an input to the state machine.
type Event interface{ isEvent() }

type (
	Submit struct{ Text string }

	SolveSucceeded struct {
		Token  uint64
		Result solver.Result
	}

	SolveFailed struct {
		Token uint64
		Err   error
	}

	Reset struct{}

	CaptionTick struct{ Token uint64 }

	// Expire is fired by a notification's own timer.
	Expire struct{ ID int64 }

	// Dismiss is the user closing a notification early.
	Dismiss struct{ ID int64 }

	Copy struct{ Index int }

	// Copied reports the outcome of a WriteClipboard effect.
	Copied struct {
		Index int
		Err   error
	}

	Share struct{}

	Download struct{}

	TechniqueChosen struct{ ID technique.ID }

	Notify struct {
		Message  string
		Severity Severity
	}
)

func (Submit) isEvent()          {}
func (SolveSucceeded) isEvent()  {}
func (SolveFailed) isEvent()     {}
func (Reset) isEvent()           {}
func (CaptionTick) isEvent()     {}
func (Expire) isEvent()          {}
func (Dismiss) isEvent()         {}
func (Copy) isEvent()            {}
func (Copied) isEvent()          {}
func (Share) isEvent()           {}
func (Download) isEvent()        {}
func (TechniqueChosen) isEvent() {}
func (Notify) isEvent()          {}

// Effect is work the Controller performs on behalf of the reducer.
type Effect interface{ isEffect() }

type (
	StartSolve struct {
		Token   uint64
		Problem string
	}

	// AbandonSolve cancels a superseded in-flight solve.
	AbandonSolve struct{ Token uint64 }

	ScheduleCaption struct{ Token uint64 }

	ScheduleExpiry struct{ ID int64 }

	WriteClipboard struct {
		Index int
		Text  string
	}
)

func (StartSolve) isEffect()      {}
func (AbandonSolve) isEffect()    {}
func (ScheduleCaption) isEffect() {}
func (ScheduleExpiry) isEffect()  {}
func (WriteClipboard) isEffect()  {}

// Apply returns the state after ev and the effects it requires.
func (s State) Apply(ev Event) (State, []Effect) {
	var fx []Effect

	switch ev := ev.(type) {
	case Submit:
		if strings.TrimSpace(ev.Text) == "" {
			return s.notify(MsgEmptyInput, SeverityInfo, fx)
		}
		if s.Phase == PhaseLoading {
			fx = append(fx, AbandonSolve{Token: s.Token})
		}
		s.Token++
		s.Phase = PhaseLoading
		s.ProblemText = ev.Text
		s.Result = nil
		s.CaptionIndex = 0
		fx = append(fx, StartSolve{Token: s.Token, Problem: ev.Text}, ScheduleCaption{Token: s.Token})
		return s, fx

	case SolveSucceeded:
		if !s.awaiting(ev.Token) {
			return s, nil
		}
		res := ev.Result
		s.Phase = PhaseReady
		s.Result = &res
		s.CaptionIndex = 0
		return s.notify(MsgSolved, SeveritySuccess, fx)

	case SolveFailed:
		if !s.awaiting(ev.Token) {
			return s, nil
		}
		s.Phase = PhaseIdle
		s.Result = nil
		s.CaptionIndex = 0
		return s.notify(MsgSolveFailed, SeverityError, fx)

	case Reset:
		if s.Phase == PhaseLoading {
			fx = append(fx, AbandonSolve{Token: s.Token})
		}
		s.Token++
		s.Phase = PhaseIdle
		s.ProblemText = ""
		s.Result = nil
		s.CaptionIndex = 0
		return s.notify(MsgNewSession, SeverityInfo, fx)

	case CaptionTick:
		if !s.awaiting(ev.Token) {
			return s, nil
		}
		s.CaptionIndex = (s.CaptionIndex + 1) % len(captions)
		return s, []Effect{ScheduleCaption{Token: s.Token}}

	case Expire:
		return s.remove(ev.ID), nil

	case Dismiss:
		return s.remove(ev.ID), nil

	case Copy:
		if s.Phase != PhaseReady || s.Result == nil || ev.Index < 0 || ev.Index >= len(s.Result.Solutions) {
			return s, nil
		}
		return s, []Effect{WriteClipboard{Index: ev.Index, Text: s.Result.Solutions[ev.Index].ClipboardText()}}

	case Copied:
		if ev.Err != nil {
			return s.notify(MsgCopyFailed, SeverityError, fx)
		}
		return s.notify(MsgCopied, SeveritySuccess, fx)

	case Share:
		return s.notify(MsgShareSoon, SeverityInfo, fx)

	case Download:
		return s.notify(MsgDownloading, SeverityInfo, fx)

	case TechniqueChosen:
		d := technique.Resolve(ev.ID)
		return s.notify(fmt.Sprintf(msgChosenFormat, d.Name), SeverityInfo, fx)

	case Notify:
		if ev.Severity == "" {
			ev.Severity = SeverityInfo
		}
		return s.notify(ev.Message, ev.Severity, fx)
	}
	return s, nil
}

// awaiting reports whether an outcome or tick for token still applies.
func (s State) awaiting(token uint64) bool {
	return s.Phase == PhaseLoading && token == s.Token
}

func (s State) notify(msg string, sev Severity, fx []Effect) (State, []Effect) {
	s.lastNotification++
	n := Notification{ID: s.lastNotification, Message: msg, Severity: sev}

	list := make([]Notification, len(s.Notifications), len(s.Notifications)+1)
	copy(list, s.Notifications)
	s.Notifications = append(list, n)
	return s, append(fx, ScheduleExpiry{ID: n.ID})
}

func (s State) remove(id int64) State {
	for i, n := range s.Notifications {
		if n.ID != id {
			continue
		}
		list := make([]Notification, 0, len(s.Notifications)-1)
		list = append(list, s.Notifications[:i]...)
		s.Notifications = append(list, s.Notifications[i+1:]...)
		return s
	}
	return s
}
