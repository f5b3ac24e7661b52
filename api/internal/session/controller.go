package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/technique"
)

const (
	DefaultCaptionInterval = 2 * time.Second
	DefaultNotificationTTL = 4 * time.Second
	DefaultSolveTimeout    = 90 * time.Second
)

var ErrEmptyInput = errors.New("session: empty problem")

// Solver is the part of solver.Gateway the controller needs.
type Solver interface {
	Solve(ctx context.Context, problem string) (solver.Result, error)
}

// Scheduler runs f once after d. AfterFunc must not call f synchronously.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Clipboard receives the text of a copied solution. On a terminal this is the
// system clipboard, in chat it is a plain message to the user.
type Clipboard interface {
	WriteText(text string) error
}

type discardClipboard struct{}

func (discardClipboard) WriteText(string) error { return nil }

// Outcome is one finished solve as handed to a Journal.
type Outcome struct {
	Problem string
	Result  *solver.Result
	Err     error
	Elapsed time.Duration
	Stale   bool
}

// Journal records finished solves. Record is called off the dispatch path.
type Journal interface {
	Record(ctx context.Context, o Outcome) error
}

type Option func(*Controller)

func WithScheduler(s Scheduler) Option        { return func(c *Controller) { c.sched = s } }
func WithClipboard(cb Clipboard) Option       { return func(c *Controller) { c.clip = cb } }
func WithLogger(l *zap.Logger) Option         { return func(c *Controller) { c.log = l } }
func WithJournal(j Journal) Option            { return func(c *Controller) { c.journal = j } }
func WithSolveTimeout(d time.Duration) Option { return func(c *Controller) { c.solveTimeout = d } }

func WithCaptionInterval(d time.Duration) Option {
	return func(c *Controller) { c.captionEvery = d }
}

func WithNotificationTTL(d time.Duration) Option {
	return func(c *Controller) { c.notificationTTL = d }
}

// Controller serializes every event for one session. Dispatch applies the
// event, publishes the new snapshot and starts the resulting effects, all
// under one lock, so snapshots are observed in order.
type Controller struct {
	solver  Solver
	sched   Scheduler
	clip    Clipboard
	journal Journal
	log     *zap.Logger

	captionEvery    time.Duration
	notificationTTL time.Duration
	solveTimeout    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	state     State
	closed    bool
	timers    map[uint64]Timer
	nextTimer uint64
	inflight  map[uint64]context.CancelFunc
	updates   chan State
}

func New(s Solver, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		solver:          s,
		sched:           wallClock{},
		clip:            discardClipboard{},
		log:             zap.NewNop(),
		captionEvery:    DefaultCaptionInterval,
		notificationTTL: DefaultNotificationTTL,
		solveTimeout:    DefaultSolveTimeout,
		ctx:             ctx,
		cancel:          cancel,
		state:           NewState(),
		timers:          make(map[uint64]Timer),
		inflight:        make(map[uint64]context.CancelFunc),
		updates:         make(chan State, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Updates delivers the latest snapshot after every change. Intermediate
// snapshots are dropped when the reader falls behind. The channel is closed
// by Close.
func (c *Controller) Updates() <-chan State { return c.updates }

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	prev := c.state.Phase
	next, effects := c.state.Apply(ev)
	c.state = next
	if prev != next.Phase {
		c.log.Debug("session phase",
			zap.Stringer("from", prev),
			zap.Stringer("to", next.Phase),
			zap.Uint64("token", next.Token),
		)
	}
	c.publish(next)

	for _, fx := range effects {
		c.run(fx)
	}
}

// Submit starts a solve for text. Blank text only raises a notification and
// returns ErrEmptyInput.
func (c *Controller) Submit(text string) error {
	c.Dispatch(Submit{Text: text})
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	return nil
}

func (c *Controller) Reset() { c.Dispatch(Reset{}) }

// Copy copies solution index of the current result; ignored outside Ready.
func (c *Controller) Copy(index int) { c.Dispatch(Copy{Index: index}) }

func (c *Controller) Share() { c.Dispatch(Share{}) }

func (c *Controller) Download() { c.Dispatch(Download{}) }

func (c *Controller) Dismiss(id int64) { c.Dispatch(Dismiss{ID: id}) }

func (c *Controller) ChooseTechnique(id technique.ID) {
	c.Dispatch(TechniqueChosen{ID: id})
}

func (c *Controller) Notify(msg string, sev Severity) {
	c.Dispatch(Notify{Message: msg, Severity: sev})
}

// Close stops all timers, cancels in-flight solves and waits for their
// goroutines. Events dispatched afterwards are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	close(c.updates)
}

// publish keeps only the newest snapshot in the buffer. Callers hold c.mu.
func (c *Controller) publish(s State) {
	select {
	case c.updates <- s:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- s:
	default:
	}
}

// run starts one effect. Callers hold c.mu; nothing here blocks.
func (c *Controller) run(fx Effect) {
	switch fx := fx.(type) {
	case StartSolve:
		c.startSolve(fx.Token, fx.Problem)
	case AbandonSolve:
		if cancel, ok := c.inflight[fx.Token]; ok {
			cancel()
			delete(c.inflight, fx.Token)
		}
	case ScheduleCaption:
		c.after(c.captionEvery, CaptionTick{Token: fx.Token})
	case ScheduleExpiry:
		c.after(c.notificationTTL, Expire{ID: fx.ID})
	case WriteClipboard:
		c.writeClipboard(fx)
	}
}

func (c *Controller) after(d time.Duration, ev Event) {
	id := c.nextTimer
	c.nextTimer++
	c.timers[id] = c.sched.AfterFunc(d, func() {
		c.mu.Lock()
		delete(c.timers, id)
		c.mu.Unlock()
		c.Dispatch(ev)
	})
}

func (c *Controller) startSolve(token uint64, problem string) {
	ctx, cancel := context.WithTimeout(c.ctx, c.solveTimeout)
	c.inflight[token] = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		started := time.Now()
		res, err := c.solver.Solve(ctx, problem)
		elapsed := time.Since(started)

		c.mu.Lock()
		_, live := c.inflight[token]
		delete(c.inflight, token)
		stale := !live || c.state.Token != token
		c.mu.Unlock()

		if err != nil {
			c.log.Warn("solve failed", zap.Uint64("token", token), zap.Bool("stale", stale), zap.Error(err))
			c.Dispatch(SolveFailed{Token: token, Err: err})
		} else {
			if stale {
				c.log.Debug("stale solve discarded", zap.Uint64("token", token))
			}
			c.Dispatch(SolveSucceeded{Token: token, Result: res})
		}

		c.record(Outcome{Problem: problem, Result: resultOrNil(res, err), Err: err, Elapsed: elapsed, Stale: stale})
	}()
}

func resultOrNil(res solver.Result, err error) *solver.Result {
	if err != nil {
		return nil
	}
	return &res
}

func (c *Controller) record(o Outcome) {
	if c.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.journal.Record(ctx, o); err != nil {
		c.log.Warn("journal record failed", zap.Error(err))
	}
}

func (c *Controller) writeClipboard(fx WriteClipboard) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := c.clip.WriteText(fx.Text)
		if err != nil {
			c.log.Warn("clipboard write failed", zap.Int("index", fx.Index), zap.Error(err))
		}
		c.Dispatch(Copied{Index: fx.Index, Err: err})
	}()
}
