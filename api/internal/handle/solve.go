package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mobtakir/api/internal/session"
	"mobtakir/api/internal/solver"
)

type SolveRequest struct {
	Problem string `json:"problem"`
	LLMName string `json:"llm_name,omitempty"`
}

type SolveResponse struct {
	Problem string `json:"problem"`
	solver.Result
}

func (h *Handle) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	name := req.LLMName
	if name == "" {
		name = h.defaultEngine
	}
	engine, err := h.engs.GetEngine(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestDeadline(r))
	defer cancel()

	started := time.Now()
	res, err := solver.NewGateway(engine, h.log).Solve(ctx, req.Problem)
	switch {
	case errors.Is(err, solver.ErrEmptyProblem):
		http.Error(w, "problem is empty", http.StatusBadRequest)
		return
	case err != nil:
		h.record(ctx, engine, session.Outcome{Problem: req.Problem, Err: err, Elapsed: time.Since(started)})
		http.Error(w, "solve failed", http.StatusBadGateway)
		return
	}

	h.record(ctx, engine, session.Outcome{Problem: req.Problem, Result: &res, Elapsed: time.Since(started)})
	writeJSON(w, http.StatusOK, SolveResponse{Problem: req.Problem, Result: res})
}
