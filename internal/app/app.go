// Package app wires configuration, ingestion and the web server together
// for the command line entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/attendance/internal/config"
	"github.com/JonMunkholm/attendance/internal/core"
	"github.com/JonMunkholm/attendance/internal/web"
)

// NewLoader returns a Loader configured from cfg.
func NewLoader(cfg *config.Config, logger *slog.Logger) *core.Loader {
	return &core.Loader{
		MaxBytes: cfg.Source.MaxBytes,
		Timeout:  cfg.Source.FetchTimeout,
		Logger:   logger,
	}
}

// LoadDataset fetches and parses the configured source once. Failures are
// carried in Dataset.Err so the caller can still serve the empty state; the
// returned error is non-nil only when the source URI itself is unusable.
func LoadDataset(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.Dataset, error) {
	src, err := core.NewSource(cfg.Source.URI, core.SourceOptions{
		HTTPClient:    &http.Client{Timeout: cfg.Source.FetchTimeout},
		PostgresTable: cfg.Source.Table,
	})
	if err != nil {
		return core.Dataset{}, fmt.Errorf("source %q: %w", config.MaskURI(cfg.Source.URI), err)
	}

	rs, report, err := NewLoader(cfg, logger).Load(ctx, src)
	return core.Dataset{Records: rs, Report: report, Err: err, LoadedAt: time.Now()}, nil
}

// Serve runs the dashboard until ctx is cancelled, then shuts down within
// the configured timeout.
func Serve(ctx context.Context, cfg *config.Config, ds core.Dataset) error {
	server := web.NewServer(ds, cfg)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		server.Shutdown(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}
