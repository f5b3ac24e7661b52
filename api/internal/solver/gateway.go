package solver

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"mobtakir/api/internal/logging"
	"mobtakir/api/internal/prompt"
	"mobtakir/api/internal/technique"
)

// Gateway turns a problem statement into a validated Result using one
// engine. It holds no per-request state and is safe for concurrent use.
type Gateway struct {
	engine Engine
	log    *zap.Logger
}

func NewGateway(engine Engine, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{engine: engine, log: log}
}

func (g *Gateway) Engine() Engine { return g.engine }

// Solve issues exactly one request to the engine; there is no retry and no
// caching. Every failure is a *SolveError matching ErrSolveFailed.
func (g *Gateway) Solve(ctx context.Context, problem string) (Result, error) {
	if strings.TrimSpace(problem) == "" {
		return Result{}, ErrEmptyProblem
	}
	ctx, _ = logging.EnsureRequestID(ctx)
	log := logging.FromContext(ctx, g.log).With(
		zap.String("engine", g.engine.Name()),
		zap.String("model", g.engine.GetModel()),
	)

	started := time.Now()
	raw, err := g.engine.Generate(ctx, prompt.Build(problem, technique.All()))
	if err != nil {
		return Result{}, g.fail(log, started, err)
	}
	res, err := ParseReply(raw)
	if err != nil {
		return Result{}, g.fail(log, started, err)
	}

	fields := []zap.Field{
		zap.String("technique", string(res.TechniqueID)),
		zap.Bool("repaired", res.Repaired),
		zap.Int("solutions", len(res.Solutions)),
		zap.Duration("elapsed", time.Since(started)),
	}
	if res.Repaired {
		fields = append(fields, zap.String("raw_technique", res.RawTechniqueID))
	}
	log.Info("solve done", fields...)
	return res, nil
}

func (g *Gateway) fail(log *zap.Logger, started time.Time, cause error) error {
	log.Warn("solve failed", zap.Error(cause), zap.Duration("elapsed", time.Since(started)))
	return &SolveError{Engine: g.engine.Name(), Cause: cause}
}
