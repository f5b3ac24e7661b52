package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"mobtakir/api/internal/config"
	"mobtakir/api/internal/logging"
	"mobtakir/api/internal/session"
	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/solver/backends"
	"mobtakir/api/internal/store"
	"mobtakir/api/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	// The terminal belongs to the UI; logs go to MOBTAKIR_LOG_FILE or nowhere.
	log := zap.NewNop()
	if cfg.LogFile != "" {
		l, err := logging.New(cfg)
		if err != nil {
			return err
		}
		log = l
		defer func() { _ = log.Sync() }()
	}

	ctx := context.Background()
	engines, err := backends.FromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}
	eng, err := engines.GetEngine(cfg.Engine)
	if err != nil {
		return err
	}

	opts := []session.Option{
		session.WithLogger(log),
		session.WithClipboard(tui.SystemClipboard{}),
		session.WithSolveTimeout(cfg.SolveTimeout),
	}
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, session.WithJournal(store.Journal{
			Repo: store.NewSolveRepo(db), Engine: eng.Name(), Model: eng.GetModel(),
		}))
	}

	ctrl := session.New(solver.NewGateway(eng, log), opts...)
	defer ctrl.Close()

	style := "dark"
	if os.Getenv("NO_COLOR") != "" {
		style = "notty"
	}
	p := tea.NewProgram(tui.New(ctrl, tui.WithStylePath(style)), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
