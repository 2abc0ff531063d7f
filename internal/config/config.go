// Package config loads nutrilog settings from an optional YAML file, an
// optional .env file, and NUTRILOG_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/roach88/nutrilog/internal/store"
)

// Config represents the full application configuration surface.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Export   ExportConfig   `yaml:"export"`
}

// DatabaseConfig holds the SQLite record store settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`

	// Disabled forces the in-memory fallback.
	Disabled bool `yaml:"disabled"`

	// MaxPageCount caps the database size. Zero means unlimited.
	MaxPageCount  int `yaml:"max_page_count"`
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
}

// LogConfig holds logger options.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AnalysisConfig holds settings for the photo analysis service. An empty
// Endpoint disables analysis.
type AnalysisConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ExportConfig holds export report options.
type ExportConfig struct {
	Locale string `yaml:"locale"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:          "nutrilog.db",
			BusyTimeoutMS: int(store.DefaultBusyTimeout / time.Millisecond),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Analysis: AnalysisConfig{
			Timeout: 30 * time.Second,
		},
		Export: ExportConfig{
			Locale: "en",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), the env file, and the process environment.
//
// An explicit envFile that does not exist is ignored, as is a missing .env
// in the working directory when envFile is empty.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Configuration may come from the environment directly.
		_ = godotenv.Load()
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString("NUTRILOG_DB_PATH", &c.Database.Path)
	setString("NUTRILOG_LOG_LEVEL", &c.Log.Level)
	setString("NUTRILOG_LOG_FORMAT", &c.Log.Format)
	setString("NUTRILOG_ANALYSIS_URL", &c.Analysis.Endpoint)
	setString("NUTRILOG_ANALYSIS_KEY", &c.Analysis.APIKey)
	setString("NUTRILOG_LOCALE", &c.Export.Locale)

	if v := os.Getenv("NUTRILOG_DB_DISABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NUTRILOG_DB_DISABLED: %w", err)
		}
		c.Database.Disabled = b
	}
	if err := setInt("NUTRILOG_DB_MAX_PAGES", &c.Database.MaxPageCount); err != nil {
		return err
	}
	if err := setInt("NUTRILOG_DB_BUSY_TIMEOUT_MS", &c.Database.BusyTimeoutMS); err != nil {
		return err
	}
	if v := os.Getenv("NUTRILOG_ANALYSIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NUTRILOG_ANALYSIS_TIMEOUT: %w", err)
		}
		c.Analysis.Timeout = d
	}
	return nil
}

// Validate ensures that configuration values are usable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Database.Path == "" && !c.Database.Disabled {
		return errors.New("database.path must be provided unless database.disabled is set")
	}
	if c.Database.MaxPageCount < 0 {
		return errors.New("database.max_page_count must not be negative")
	}
	if c.Database.BusyTimeoutMS < 0 {
		return errors.New("database.busy_timeout_ms must not be negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q must be json or console", c.Log.Format)
	}

	if c.Analysis.Endpoint != "" {
		u, err := url.Parse(c.Analysis.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("analysis.endpoint %q must be an http(s) URL", c.Analysis.Endpoint)
		}
	}
	if c.Analysis.Timeout <= 0 {
		return errors.New("analysis.timeout must be positive")
	}

	if _, err := language.Parse(c.Export.Locale); err != nil {
		return fmt.Errorf("export.locale %q: %w", c.Export.Locale, err)
	}

	return nil
}

// StoreOptions maps the database settings onto store.Options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		BusyTimeout:  time.Duration(c.Database.BusyTimeoutMS) * time.Millisecond,
		MaxPageCount: c.Database.MaxPageCount,
	}
}

// Language returns the parsed export locale, English if it does not parse.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Export.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

func setString(key string, dst *string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setInt(key string, dst *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
