package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mobtakir/api/internal/technique"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if _, err := r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil { // ack
		r.logger().Debug("callback ack", zap.Error(err))
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	cid := cb.Message.Chat.ID
	c, err := r.chat(cid)
	if err != nil {
		r.send(cid, "❌ "+err.Error())
		return
	}

	action, arg, _ := strings.Cut(cb.Data, ":")
	switch action {
	case "ex":
		n, _ := strconv.Atoi(arg)
		if ex, ok := technique.ExampleByID(n); ok {
			c.submitExample(ex.Text)
		}
	case "use":
		c.useTechnique(technique.ID(arg))
	case "copy":
		if i, err := strconv.Atoi(arg); err == nil {
			c.ctrl.Copy(i)
		}
	case "share":
		c.ctrl.Share()
	case "download":
		c.ctrl.Download()
	case "reset":
		c.ctrl.Reset()
	case "dismiss":
		if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
			c.ctrl.Dismiss(id)
		}
	default:
		r.logger().Debug("unknown callback", zap.String("data", cb.Data))
	}
}
