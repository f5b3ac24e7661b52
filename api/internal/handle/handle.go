package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mobtakir/api/internal/session"
	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/store"
)

const defaultDeadline = 90 * time.Second

type Handle struct {
	engs          *solver.Engines
	defaultEngine string
	deadline      time.Duration
	repo          *store.SolveRepo
	log           *zap.Logger
}

// New serves solves through engs. repo may be nil, in which case nothing is
// journaled.
func New(engs *solver.Engines, defaultEngine string, repo *store.SolveRepo, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		engs:          engs,
		defaultEngine: defaultEngine,
		deadline:      defaultDeadline,
		repo:          repo,
		log:           log,
	}
}

// SetDeadline changes the per-request solve deadline used when the caller
// sends none.
func (h *Handle) SetDeadline(d time.Duration) {
	if d > 0 {
		h.deadline = d
	}
}

// Routes registers every endpoint on mux.
func (h *Handle) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/solve", h.Solve)
	mux.HandleFunc("/v1/techniques", h.Techniques)
	mux.HandleFunc("/v1/examples", h.Examples)
	mux.HandleFunc("/v1/engines", h.Engines)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// requestDeadline honours X-Request-Timeout, then ?timeoutSec=, in seconds.
func (h *Handle) requestDeadline(r *http.Request) time.Duration {
	deadline := h.deadline
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return deadline
}

func (h *Handle) record(ctx context.Context, eng solver.Engine, o session.Outcome) {
	if h.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := h.repo.Record(ctx, store.NewEntry(0, eng.Name(), eng.GetModel(), o)); err != nil {
		h.log.Warn("journal record failed", zap.Error(err))
	}
}
