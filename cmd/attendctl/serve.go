package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/attendance/internal/app"
	"github.com/JonMunkholm/attendance/internal/logging"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Long: `Load the attendance source once and serve the dashboard until
interrupted. Uses the same configuration as the server binary.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides SERVER_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ds, err := app.LoadDataset(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	if ds.Err != nil {
		slog.Warn("serving empty dashboard", "error", ds.Err)
	}
	return app.Serve(ctx, cfg, ds)
}
