package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Crawl    CrawlConfig    `yaml:"crawl"`
}

type ServerConfig struct {
	Host                string `yaml:"host" validate:"required"`
	Port                int    `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds" validate:"min=1"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds" validate:"min=1"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type CrawlConfig struct {
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	MaxPages int    `yaml:"max_pages" validate:"min=1"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8080,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 60,
		},
		Database: DatabaseConfig{
			Path: "./wayfinder.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Crawl: CrawlConfig{
			MaxPages: 200,
		},
	}
}

// Load reads a YAML config file and merges it over defaults.
// If the file does not exist, defaults are returned without error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("No config file found, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints after the YAML merge.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LogLevel maps the configured level name to slog. Unknown names fall
// back to info.
func (c Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
