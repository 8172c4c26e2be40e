// cmd/api/main.go
// Main entry point for the application
// This file defines the command tree; app.go bootstraps all components

package main

import (
	"os"

	"github.com/imadgeboyega/campusconnect-backend/internal/config"
	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "campusconnect",
		Short:         "Student events recommendation and study buddy matching API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCmd(), newSuggestCmd())
	return root
}

// loadConfig loads .env, configures logging and validates the configuration
func loadConfig() (*config.Config, error) {
	envErr := godotenv.Load()

	cfg := config.Load()
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Caller: cfg.IsDevelopment(),
	})

	if envErr != nil {
		logging.Warn().Err(envErr).Msg("no .env file found, using environment variables")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Info().
		Str("environment", cfg.Environment).
		Str("store", cfg.StoreDriver).
		Str("audit_sink", cfg.AuditSink).
		Msg("configuration loaded")
	return cfg, nil
}
