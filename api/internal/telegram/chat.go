package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mobtakir/api/internal/session"
	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/technique"
	"mobtakir/api/internal/util"
)

// chat is one Telegram conversation: a session controller plus the messages
// currently mirroring its state.
type chat struct {
	id     int64
	engine string
	eng    solver.Engine
	bot    Sender
	ctrl   *session.Controller
	log    *zap.Logger
	done   chan struct{}

	// prefix set by a "use technique" button, prepended to the next text.
	mu     sync.Mutex
	prefix string

	// render state, owned by the render goroutine
	captionMsg  int
	captionText string
	shownToken  uint64
	notices     map[int64]int
}

func newChat(id int64, engine string, eng solver.Engine, bot Sender, ctrl *session.Controller, log *zap.Logger) *chat {
	c := &chat{
		id:      id,
		engine:  engine,
		eng:     eng,
		bot:     bot,
		ctrl:    ctrl,
		log:     log,
		done:    make(chan struct{}),
		notices: make(map[int64]int),
	}
	go c.loop()
	return c
}

func (c *chat) loop() {
	defer close(c.done)
	for st := range c.ctrl.Updates() {
		c.render(st)
	}
}

func (c *chat) close() {
	c.ctrl.Close()
	<-c.done
}

func (c *chat) submit(text string) {
	c.mu.Lock()
	if c.prefix != "" && text != "" {
		text = c.prefix + text
		c.prefix = ""
	}
	c.mu.Unlock()
	_ = c.ctrl.Submit(text)
}

// submitExample sends a sample problem as written; a pending technique prefix
// is dropped.
func (c *chat) submitExample(text string) {
	c.mu.Lock()
	c.prefix = ""
	c.mu.Unlock()
	_ = c.ctrl.Submit(text)
}

func (c *chat) useTechnique(id technique.ID) {
	d := technique.Resolve(id)
	c.mu.Lock()
	c.prefix = technique.UsePrefix(d)
	c.mu.Unlock()
	c.ctrl.ChooseTechnique(d.ID)
}

func (c *chat) render(st session.State) {
	c.renderCaption(st)

	if st.Phase == session.PhaseReady && st.Result != nil && c.shownToken != st.Token {
		c.shownToken = st.Token
		msg := tgbotapi.NewMessage(c.id, util.Truncate(formatResult(st.ProblemText, *st.Result), 3900))
		msg.ReplyMarkup = resultKeyboard(len(st.Result.Solutions))
		c.sendMsg(msg)
	}

	c.renderNotices(st.Notifications)
}

func (c *chat) renderCaption(st session.State) {
	if st.Phase != session.PhaseLoading {
		if c.captionMsg != 0 {
			c.request(tgbotapi.NewDeleteMessage(c.id, c.captionMsg))
			c.captionMsg = 0
			c.captionText = ""
		}
		return
	}

	text := "⏳ " + st.Caption()
	switch {
	case c.captionMsg == 0:
		if m, ok := c.sendMsg(tgbotapi.NewMessage(c.id, text)); ok {
			c.captionMsg = m.MessageID
			c.captionText = text
		}
	case text != c.captionText:
		if _, err := c.bot.Send(tgbotapi.NewEditMessageText(c.id, c.captionMsg, text)); err != nil {
			c.log.Debug("caption edit", zap.Error(err))
		}
		c.captionText = text
	}
}

func (c *chat) renderNotices(list []session.Notification) {
	live := make(map[int64]bool, len(list))
	for _, n := range list {
		live[n.ID] = true
		if _, shown := c.notices[n.ID]; shown {
			continue
		}
		msg := tgbotapi.NewMessage(c.id, severityIcon(n.Severity)+" "+n.Message)
		msg.ReplyMarkup = dismissKeyboard(n.ID)
		if m, ok := c.sendMsg(msg); ok {
			c.notices[n.ID] = m.MessageID
		}
	}
	for id, msgID := range c.notices {
		if !live[id] {
			c.request(tgbotapi.NewDeleteMessage(c.id, msgID))
			delete(c.notices, id)
		}
	}
}

func (c *chat) sendMsg(msg tgbotapi.MessageConfig) (tgbotapi.Message, bool) {
	m, err := c.bot.Send(msg)
	if err != nil {
		c.log.Warn("telegram send", zap.Error(err))
		return tgbotapi.Message{}, false
	}
	return m, true
}

func (c *chat) request(cfg tgbotapi.Chattable) {
	if _, err := c.bot.Request(cfg); err != nil {
		c.log.Debug("telegram request", zap.Error(err))
	}
}

// chatClipboard "copies" by sending the text as its own message, which the
// user can copy from their client.
type chatClipboard struct {
	bot    Sender
	chatID int64
}

func (cb chatClipboard) WriteText(text string) error {
	_, err := cb.bot.Send(tgbotapi.NewMessage(cb.chatID, text))
	return err
}
