package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"AffairsRelay/internal/app"
	"AffairsRelay/internal/config"
	"AffairsRelay/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}

	if application.Scheduled() {
		err = application.Serve(ctx)
	} else {
		_, err = application.Run(ctx)
	}

	if closeErr := application.Close(context.Background()); closeErr != nil {
		logger.Warn("close storage", "error", closeErr)
	}
	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
