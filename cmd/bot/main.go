package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/bot"
	"github.com/Armin-kho/channel-growth-bot/internal/config"
	"github.com/Armin-kho/channel-growth-bot/internal/metrics"
	"github.com/Armin-kho/channel-growth-bot/internal/scheduler"
	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfgPath := flag.String("config", config.DefaultConfigPath(), "path to config.json")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Fatal("create data dir", zap.Error(err))
	}
	dbPath := filepath.Join(cfg.DataDir, "bot.db")
	db, err := store.Open(dbPath)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.SeedAdmins(ctx, cfg.InitialAdminIDs); err != nil {
		logger.Fatal("seed admins", zap.Error(err))
	}

	if cfg.MetricsAddr != "" {
		metrics.Serve(cfg.MetricsAddr)
		logger.Info("metrics listener started", zap.String("addr", cfg.MetricsAddr))
	}

	b, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("bot api", zap.Error(err))
	}
	b.Debug = cfg.Debug

	app := bot.New(cfg, db, b, cfg.DataDir, dbPath, logger)

	sched, err := scheduler.New(db, app.Executor(), app, cfg.AnalyticsRetentionDays, logger)
	if err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}
	sched.Start()
	defer func() { _ = sched.Stop() }()

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("run", zap.Error(err))
	}
	logger.Info("shutting down")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
