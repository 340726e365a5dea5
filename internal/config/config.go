// Package config loads hnreader settings from
// $XDG_CONFIG_HOME/hnreader/config.yaml with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the persistent application configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Paging  PagingConfig  `yaml:"paging"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig holds Hacker News API client settings
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// PagingConfig controls how much is loaded per page and when
type PagingConfig struct {
	PageSize      int `yaml:"page_size"`
	MaxConcurrent int `yaml:"max_concurrent"` // per-page fetch fan-out
	Prefetch      int `yaml:"prefetch"`       // rows from the end that trigger an append
}

// StoreConfig locates the local cache
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the log file
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// MetricsConfig enables the prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://hacker-news.firebaseio.com/v0",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 20,
			Burst:             10,
		},
		Paging: PagingConfig{
			PageSize:      30,
			MaxConcurrent: 8,
			Prefetch:      5,
		},
		Store: StoreConfig{
			Path: "~/.hnreader/cache.db",
		},
		Log: LogConfig{
			Path:  "~/.hnreader/logs/hnreader.log",
			Level: "info",
		},
	}
}

// ConfigPath returns the config file path.
func ConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "hnreader", "config.yaml"), nil
}

// Load reads the default config file. A missing file yields DefaultConfig.
// Environment overrides are applied in both cases.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads config from path on top of the defaults, so a file only
// needs the keys it changes.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from HNREADER_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("HNREADER_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("HNREADER_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("HNREADER_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("HNREADER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	var err error
	if c.Paging.PageSize, err = getEnvInt("HNREADER_PAGE_SIZE", c.Paging.PageSize); err != nil {
		return err
	}
	if c.Paging.MaxConcurrent, err = getEnvInt("HNREADER_MAX_CONCURRENT", c.Paging.MaxConcurrent); err != nil {
		return err
	}
	if c.API.Timeout, err = getEnvDuration("HNREADER_API_TIMEOUT", c.API.Timeout); err != nil {
		return err
	}
	return nil
}

// Validate reports the first setting the engine cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.Paging.PageSize < 1 {
		return fmt.Errorf("paging.page_size must be >= 1, got %d", c.Paging.PageSize)
	}
	if c.Paging.MaxConcurrent < 1 {
		return fmt.Errorf("paging.max_concurrent must be >= 1, got %d", c.Paging.MaxConcurrent)
	}
	if c.Paging.Prefetch < 0 {
		return fmt.Errorf("paging.prefetch must be >= 0, got %d", c.Paging.Prefetch)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	return nil
}

// Save writes config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
