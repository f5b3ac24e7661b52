package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mobtakir/api/internal/config"
	"mobtakir/api/internal/httpserver"
	"mobtakir/api/internal/logging"
	"mobtakir/api/internal/solver/backends"
	"mobtakir/api/internal/store"
	"mobtakir/api/internal/telegram"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("bot stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Require("TELEGRAM_BOT_TOKEN"); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engines, err := backends.FromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}

	checks := map[string]httpserver.Check{}
	var (
		db   *sql.DB
		repo *store.SolveRepo
	)
	if cfg.DatabaseURL != "" {
		db, err = store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("db connected", zap.String("dsn", config.SafeDSNSummary(cfg.DatabaseURL)))
		repo = store.NewSolveRepo(db)
		checks["db"] = db.PingContext
	} else {
		log.Info("no database configured, solve journal disabled")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return err
	}
	bot.Debug = false
	log.Info("authorized", zap.String("bot", bot.Self.UserName))

	r := &telegram.Router{
		Bot:           bot,
		Engines:       engines,
		DefaultEngine: cfg.Engine,
		SolveTimeout:  cfg.SolveTimeout,
		Repo:          repo,
		Log:           log,
	}
	defer r.Close()

	// DefaultServeMux, so the handler ListenForWebhook registers is served too.
	http.HandleFunc("/healthz", httpserver.Healthz(checks))
	srv := httpserver.New("0.0.0.0:"+cfg.Port, httpserver.WithRequestID(log, http.DefaultServeMux))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpserver.Serve(ctx, srv, log) })

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		updates, err := startWebhook(bot, webhookURL, log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case upd := <-updates:
					r.HandleUpdate(upd)
				}
			}
		})
	} else {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Warn("delete webhook", zap.Error(err))
		}
		g.Go(func() error {
			telegram.RunPolling(ctx, bot, log, r.HandleUpdate)
			return nil
		})
	}

	if repo != nil {
		g.Go(func() error {
			return store.RunPurge(ctx, repo, cfg.JournalRetention, 24*time.Hour, log)
		})
	}

	return g.Wait()
}

func startWebhook(bot *tgbotapi.BotAPI, baseURL string, log *zap.Logger) (tgbotapi.UpdatesChannel, error) {
	path := telegram.WebhookPath(bot.Token)
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return nil, err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return nil, err
	}
	log.Info("webhook registered", zap.String("path", path))
	return bot.ListenForWebhook(path), nil
}
