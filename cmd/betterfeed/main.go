package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JustTrott/team-6-betterfeed-full/internal/app"
	"github.com/JustTrott/team-6-betterfeed-full/internal/config"
	"github.com/JustTrott/team-6-betterfeed-full/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
