// Package config provides application configuration management from environment variables.
package config

import (
	"fmt"
	"os"
)

// Config holds application configuration for the journal CLI, admin server,
// and load generator.
type Config struct {
	// JournalDir is the directory a Journal is opened against.
	JournalDir string
	// MaxFileSize overrides the default segment capacity, in bytes. 0 means
	// use the package default (4 MiB).
	MaxFileSize int64
	// MaxRecordSize overrides the default maximum record size, in bytes. 0
	// means use the package default (1 MiB).
	MaxRecordSize int64
	// DatabaseURL, if set, enables the Postgres checkpoint mirror.
	DatabaseURL string
	APIPort     string
	APIHost     string
	LogLevel    string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		JournalDir:    getEnv("JOURNAL_DIR", "./data/journal"),
		MaxFileSize:   getEnvInt64("JOURNAL_MAX_FILE_SIZE", 0),
		MaxRecordSize: getEnvInt64("JOURNAL_MAX_RECORD_SIZE", 0),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		APIPort:       getEnv("API_PORT", "8080"),
		APIHost:       getEnv("API_HOST", "0.0.0.0"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JournalDir == "" {
		return nil, fmt.Errorf("JOURNAL_DIR is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed int64
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
