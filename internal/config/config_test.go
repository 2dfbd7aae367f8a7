package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Database.Path != "./wayfinder.db" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\nlogging:\n  level: debug\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("unset host should keep default, got %q", cfg.Server.Host)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"port out of range", "server:\n  port: 99999\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad crawl url", "crawl:\n  base_url: not-a-url\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.contents)); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestLogLevelFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "mystery"
	if cfg.LogLevel() != slog.LevelInfo {
		t.Errorf("unknown level should map to info, got %v", cfg.LogLevel())
	}
}
