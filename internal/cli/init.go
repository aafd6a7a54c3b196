// Package cli provides common process initialization: logging, env file
// loading, configuration, and the persistence backend.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"financas/internal/config"
	applog "financas/internal/log"
	"financas/internal/state"
	"financas/internal/storage"
)

// SetupLogger initializes structured logging and installs it as the
// process default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Missing files
// are fine; production configures through the environment.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitRepository builds the persistence backend selected by the
// configuration, exiting the process on failure.
func InitRepository(logger *applog.Logger, cfg *config.Config) (state.Repository, storage.CleanupFunc) {
	repo, cleanup, err := storage.NewRepository(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend",
			"error", err,
			"backend", cfg.DataBackend,
			"path", cfg.DBPath)
		os.Exit(1)
	}
	logger.Info("Storage backend ready",
		"backend", cfg.DataBackend,
		"path", cfg.DBPath)
	return repo, cleanup
}
