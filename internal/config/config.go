// Package config loads dotanarrative settings from defaults, an optional YAML
// file and DOTANARRATIVE_* environment variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DOTANARRATIVE_STORAGE_DB_PATH.
const EnvPrefix = "DOTANARRATIVE"

// Config represents the complete application configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	OpenDota OpenDotaConfig `mapstructure:"opendota"`
	Summary  SummaryConfig  `mapstructure:"summary"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// CatalogConfig points at a hero/item/ability catalog file. An empty path
// selects the catalog embedded in the binary.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// OpenDotaConfig holds OpenDota API configuration.
type OpenDotaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SummaryConfig controls the LLM narrative summary.
type SummaryConfig struct {
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from defaults, the optional file at path and
// environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// DefaultDBPath is the database location used when none is configured.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".dotanarrative", "narratives.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.db_path", DefaultDBPath())

	v.SetDefault("catalog.path", "")

	v.SetDefault("opendota.base_url", "https://api.opendota.com/api")
	v.SetDefault("opendota.api_key", "")
	v.SetDefault("opendota.timeout", "30s")

	v.SetDefault("summary.model", "claude-sonnet-4-5")
	v.SetDefault("summary.max_tokens", 4096)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.OpenDota.BaseURL == "" {
		return fmt.Errorf("opendota.base_url is required")
	}
	if c.OpenDota.Timeout < time.Second {
		return fmt.Errorf("opendota.timeout must be at least 1 second")
	}

	if c.Summary.Model == "" {
		return fmt.Errorf("summary.model is required")
	}
	if c.Summary.MaxTokens < 256 {
		return fmt.Errorf("summary.max_tokens must be at least 256")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	return nil
}

// NewLogger builds the process logger described by the logging section.
func (l LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch l.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
