package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mobtakir/api/internal/session"
	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/store"
	"mobtakir/api/internal/technique"
)

// Sender is the part of *tgbotapi.BotAPI the router uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Router struct {
	Bot           Sender
	Engines       *solver.Engines
	DefaultEngine string
	SolveTimeout  time.Duration

	// Repo journals solves; nil disables journaling and /stats.
	Repo *store.SolveRepo
	Log  *zap.Logger

	// SessionOptions are appended to every chat controller's options.
	SessionOptions []session.Option

	mu    sync.Mutex
	chats map[int64]*chat
}

func (r *Router) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil || upd.Message.Chat == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(upd.Message)
		return
	}
	cid := upd.Message.Chat.ID
	c, err := r.chat(cid)
	if err != nil {
		r.send(cid, "❌ "+err.Error())
		return
	}
	c.submit(upd.Message.Text)
}

func (r *Router) HandleCommand(m *tgbotapi.Message) {
	cid := m.Chat.ID
	args := strings.TrimSpace(m.CommandArguments())

	switch m.Command() {
	case "start":
		msg := tgbotapi.NewMessage(cid, welcomeText)
		msg.ReplyMarkup = examplesKeyboard(technique.Examples())
		r.sendMsg(msg)
	case "new":
		if c, err := r.chat(cid); err == nil {
			c.ctrl.Reset()
		}
	case "techniques":
		r.sendTechniques(cid, args)
	case "engine":
		r.handleEngineCommand(cid, args)
	case "health":
		r.send(cid, "✅ OK")
	case "stats":
		r.sendStats(cid)
	default:
		r.send(cid, "أمر غير معروف. الأوامر: /start /new /techniques /engine /stats")
	}
}

func (r *Router) sendTechniques(cid int64, term string) {
	list := technique.Search(term)
	if len(list) == 0 {
		r.send(cid, "لا توجد تقنيات مطابقة لـ «"+term+"»")
		return
	}
	msg := tgbotapi.NewMessage(cid, formatTechniques(list))
	msg.ReplyMarkup = techniquesKeyboard(list)
	r.sendMsg(msg)
}

// handleEngineCommand shows or switches the chat's engine:
//
//	/engine
//	/engine gemini [model]
//	/engine gpt [model]
//
// Switching starts a fresh session for the chat. The model choice applies to
// this chat only.
func (r *Router) handleEngineCommand(cid int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		name, model := r.currentEngine(cid)
		r.send(cid, fmt.Sprintf("المحرك الحالي: %s (%s)\nالمتاح: %s\nالاستخدام: /engine <name> [model]",
			name, model, strings.Join(r.Engines.Names(), " | ")))
		return
	}

	name := strings.ToLower(fields[0])
	if _, err := r.Engines.GetEngine(name); err != nil {
		r.send(cid, "محرك غير معروف. المتاح: "+strings.Join(r.Engines.Names(), " | "))
		return
	}
	model := ""
	if len(fields) > 1 {
		model = fields[1]
	}

	c, err := r.buildChat(cid, name, model)
	if err != nil {
		r.send(cid, "❌ "+err.Error())
		return
	}
	r.mu.Lock()
	if r.chats == nil {
		r.chats = make(map[int64]*chat)
	}
	old := r.chats[cid]
	r.chats[cid] = c
	r.mu.Unlock()
	if old != nil {
		old.close()
	}
	r.send(cid, "✅ المحرك: "+name+" ("+c.eng.GetModel()+")")
}

func (r *Router) sendStats(cid int64) {
	if r.Repo == nil {
		r.send(cid, "الإحصاءات غير مفعّلة.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stats, err := r.Repo.TechniqueStats(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		r.logger().Warn("technique stats", zap.Error(err))
		r.send(cid, "تعذر تحميل الإحصاءات.")
		return
	}
	r.send(cid, formatStats(stats))
}

func (r *Router) currentEngine(cid int64) (name, model string) {
	r.mu.Lock()
	c, ok := r.chats[cid]
	r.mu.Unlock()
	if ok {
		return c.engine, c.eng.GetModel()
	}
	if eng, err := r.Engines.GetEngine(r.DefaultEngine); err == nil {
		model = eng.GetModel()
	}
	return r.DefaultEngine, model
}

// chat returns the chat's session, creating it on first use.
func (r *Router) chat(cid int64) (*chat, error) {
	r.mu.Lock()
	c, ok := r.chats[cid]
	r.mu.Unlock()
	if ok {
		return c, nil
	}
	return r.newChat(cid, r.DefaultEngine)
}

func (r *Router) newChat(cid int64, engineName string) (*chat, error) {
	c, err := r.buildChat(cid, engineName, "")
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.chats == nil {
		r.chats = make(map[int64]*chat)
	}
	if existing, ok := r.chats[cid]; ok {
		r.mu.Unlock()
		c.close()
		return existing, nil
	}
	r.chats[cid] = c
	r.mu.Unlock()
	return c, nil
}

// buildChat creates a session on engineName. A non-blank model is bound to a
// copy of the engine, leaving the shared one untouched.
func (r *Router) buildChat(cid int64, engineName, model string) (*chat, error) {
	eng, err := r.Engines.GetEngine(engineName)
	if err != nil {
		return nil, err
	}
	eng, ok := solver.WithModel(eng, model)
	if !ok {
		return nil, fmt.Errorf("المحرك %s لا يدعم تغيير النموذج", engineName)
	}
	log := r.logger().With(zap.Int64("chat_id", cid))

	opts := []session.Option{
		session.WithLogger(log),
		session.WithClipboard(chatClipboard{bot: r.Bot, chatID: cid}),
	}
	if r.SolveTimeout > 0 {
		opts = append(opts, session.WithSolveTimeout(r.SolveTimeout))
	}
	if r.Repo != nil {
		opts = append(opts, session.WithJournal(store.Journal{
			Repo: r.Repo, ChatID: cid, Engine: eng.Name(), Model: eng.GetModel(),
		}))
	}
	opts = append(opts, r.SessionOptions...)

	return newChat(cid, engineName, eng, r.Bot, session.New(solver.NewGateway(eng, log), opts...), log), nil
}

// Close ends every chat session and waits for their renderers.
func (r *Router) Close() {
	r.mu.Lock()
	chats := r.chats
	r.chats = nil
	r.mu.Unlock()
	for _, c := range chats {
		c.close()
	}
}

func (r *Router) send(chatID int64, text string) {
	r.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := r.Bot.Send(msg); err != nil {
		r.logger().Warn("telegram send", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}
