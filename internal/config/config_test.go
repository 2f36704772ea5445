package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Test with default values
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.APIPort != "8080" {
		t.Errorf("expected default APIPort=8080, got %s", cfg.APIPort)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected default LogLevel=info, got %s", cfg.LogLevel)
	}

	if cfg.JournalDir != "./data/journal" {
		t.Errorf("expected default JournalDir=./data/journal, got %s", cfg.JournalDir)
	}
}

func TestLoadWithEnv(t *testing.T) {
	// Test with environment variables
	_ = os.Setenv("API_PORT", "9000")
	_ = os.Setenv("LOG_LEVEL", "debug")
	_ = os.Setenv("JOURNAL_DIR", "/tmp/j")
	_ = os.Setenv("JOURNAL_MAX_FILE_SIZE", "1048576")
	defer func() {
		_ = os.Unsetenv("API_PORT")
		_ = os.Unsetenv("LOG_LEVEL")
		_ = os.Unsetenv("JOURNAL_DIR")
		_ = os.Unsetenv("JOURNAL_MAX_FILE_SIZE")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.APIPort != "9000" {
		t.Errorf("expected APIPort=9000, got %s", cfg.APIPort)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", cfg.LogLevel)
	}

	if cfg.JournalDir != "/tmp/j" {
		t.Errorf("expected JournalDir=/tmp/j, got %s", cfg.JournalDir)
	}

	if cfg.MaxFileSize != 1048576 {
		t.Errorf("expected MaxFileSize=1048576, got %d", cfg.MaxFileSize)
	}
}
