package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/deusflow/weeklydigest/internal/app"
	"github.com/deusflow/weeklydigest/internal/config"
	"github.com/deusflow/weeklydigest/internal/logger"
	"github.com/deusflow/weeklydigest/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logger.Error("weekly digest failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.Init(cfg.LogLevel, cfg.Debug).With("run_id", runID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg, runID)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("closing store", "error", err)
		}
	}()

	log.Info("starting run", "backend", cfg.StoreBackend, "engine", cfg.SummaryEngine)
	_, err = app.Run(ctx, cfg, store, log)
	return err
}
