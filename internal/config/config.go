// Package config loads application settings from environment variables,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all settings for the application.
type Config struct {
	// Core settings
	DatabasePath string
	LogLevel     string

	// Backup settings
	KDFIterations int

	// Rules settings
	RulesPath string // Empty means use the embedded default rules.
}

// Load reads configuration from the environment, seeding it from a .env file
// when one exists in the working directory.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("no .env file found, relying on OS environment")
		} else {
			slog.Warn("failed to load .env file", "error", err)
		}
	}

	return &Config{
		DatabasePath:  getEnv("BUDGETSNAP_DB_PATH", "./budgetsnap.db"),
		LogLevel:      getEnv("BUDGETSNAP_LOG_LEVEL", "info"),
		KDFIterations: getEnvAsInt("BUDGETSNAP_KDF_ITERATIONS", 100_000),
		RulesPath:     getEnv("BUDGETSNAP_RULES_PATH", ""),
	}
}

// SlogLevel maps the configured log level string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.KDFIterations < 100_000 {
		return fmt.Errorf("KDF iterations must be at least 100000, got %d", c.KDFIterations)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	slog.Warn("invalid integer environment value, using default", "key", key, "value", valueStr, "default", fallback)
	return fallback
}
