package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/attendance/internal/app"
	"github.com/JonMunkholm/attendance/internal/config"
	"github.com/JonMunkholm/attendance/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ingest once before accepting requests. A failed load is served as the
	// empty dashboard with an error banner.
	ds, err := app.LoadDataset(ctx, cfg, slog.Default())
	if err != nil {
		slog.Error("invalid attendance source", "error", err)
		os.Exit(1)
	}
	if ds.Err != nil {
		slog.Warn("serving empty dashboard", "error", ds.Err)
	}

	if err := app.Serve(ctx, cfg, ds); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
