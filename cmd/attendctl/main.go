// Command attendctl inspects an attendance CSV from the terminal and can run
// the dashboard server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/attendance/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
	source   string
)

var rootCmd = &cobra.Command{
	Use:   "attendctl",
	Short: "Attendance dashboard tools",
	Long: `attendctl loads an attendance CSV (file, http(s) URL or postgres DSN),
filters it by a search term and prints the division and classroom counts.
It can also run the web dashboard.

Configuration comes from the same environment variables as the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		} else {
			// Optional default .env
			_ = godotenv.Overload()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")
	rootCmd.PersistentFlags().StringVarP(&source, "source", "s", "", "Attendance source (overrides ATTENDANCE_SOURCE)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the environment and applies the persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if source != "" {
		cfg.Source.URI = source
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Debug("command failed", "error", err)
		os.Exit(1)
	}
}
