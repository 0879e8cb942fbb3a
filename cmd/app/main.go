package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jokes-api/internal/config"
	"jokes-api/internal/db"
	"jokes-api/internal/server"
	"jokes-api/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.NewLogger(cfg.LogLevel, cfg.IsDev)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if !cfg.DotEnvLoaded {
		lg.Info("no .env file found")
	}
	lg.Info("configuration loaded", zap.Stringer("config", cfg))

	if err := run(cfg, lg); err != nil {
		lg.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	store, err := db.Open(cfg.Database, lg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			lg.Warn("close db", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, store, lg).Run(ctx)
}
