package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"carbonmarket/ledger-backend/internal/config"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	worker := NewESGWorker(db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Refresh once at startup, then on schedule.
	if err := worker.Refresh(ctx); err != nil {
		logger.Error("initial refresh failed", zap.Error(err))
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() {
		if err := worker.Refresh(ctx); err != nil {
			logger.Error("scheduled refresh failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("failed to schedule refresh", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("esg worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("esg worker shutting down")
}
