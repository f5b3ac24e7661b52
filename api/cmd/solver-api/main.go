package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mobtakir/api/internal/config"
	"mobtakir/api/internal/handle"
	"mobtakir/api/internal/httpserver"
	"mobtakir/api/internal/logging"
	"mobtakir/api/internal/solver/backends"
	"mobtakir/api/internal/store"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("solver-api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engines, err := backends.FromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	checks := map[string]httpserver.Check{}
	var repo *store.SolveRepo
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("db connected", zap.String("dsn", config.SafeDSNSummary(cfg.DatabaseURL)))
		repo = store.NewSolveRepo(db)
		checks["db"] = db.PingContext
		g.Go(func() error {
			return store.RunPurge(ctx, repo, cfg.JournalRetention, 24*time.Hour, log)
		})
	}

	h := handle.New(engines, cfg.Engine, repo, log)
	h.SetDeadline(cfg.SolveTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz(checks))
	h.Routes(mux)

	handler := httpserver.WithCORS(cfg.CORSAllowOrigin, mux)
	srv := httpserver.New(":"+cfg.Port, httpserver.WithRequestID(log, handler))
	g.Go(func() error { return httpserver.Serve(ctx, srv, log) })
	return g.Wait()
}
