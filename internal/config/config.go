package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gocondprob/domain/core"
	"gocondprob/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
	Paths    PathConfig
}

// DatabaseConfig holds database connection settings. An empty URL disables
// persistence.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// AnalysisConfig holds calculator defaults
type AnalysisConfig struct {
	DefaultWindow  core.Millis
	BaselineDraws  int
	BaselineSeed   int64
	MaxConcurrency int
}

// PathConfig holds file system paths
type PathConfig struct {
	ReportDir string // relative report paths resolve here; empty means the working directory
}

// ReportPath resolves a report destination against ReportDir
func (c *Config) ReportPath(dest string) string {
	if c.Paths.ReportDir == "" || filepath.IsAbs(dest) {
		return dest
	}
	return filepath.Join(c.Paths.ReportDir, dest)
}

// Load reads .env when present, then configuration from environment variables
func Load() (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables and validates it
func FromEnv() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:          getEnvOrDefault("DATABASE_URL", ""),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Analysis: AnalysisConfig{
			DefaultWindow:  core.MillisFromSeconds(getEnvIntOrDefault("DEFAULT_WINDOW_SECONDS", 10)),
			BaselineDraws:  getEnvIntOrDefault("BASELINE_DRAWS", 100),
			BaselineSeed:   int64(getEnvIntOrDefault("BASELINE_SEED", 42)),
			MaxConcurrency: getEnvIntOrDefault("MAX_CONCURRENCY", 4),
		},
		Paths: PathConfig{
			ReportDir: getEnvOrDefault("REPORT_DIR", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// HasDatabase reports whether persistence is configured
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

func validateConfig(config *Config) error {
	if config.Analysis.DefaultWindow <= 0 {
		return errors.ConfigInvalid("DEFAULT_WINDOW_SECONDS must be positive")
	}
	if config.Analysis.BaselineDraws <= 0 {
		return errors.ConfigInvalid("BASELINE_DRAWS must be positive")
	}
	if config.Analysis.MaxConcurrency <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENCY must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
