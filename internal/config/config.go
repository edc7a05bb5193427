// Package config provides configuration loading and validation for the
// collection service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/brand-intel/internal/types"
)

// Config represents the service configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or come
// from environment variables.
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty means in-memory jobs

	// Collection behavior
	AllowedSources []string          `json:"allowed_sources,omitempty"` // Restrict requestable sources; empty allows all
	Endpoints      map[string]string `json:"endpoints,omitempty"`       // Per-source URL templates (subject, area)
	MaxRetries     int               `json:"max_retries,omitempty"`     // Network attempts per source before fallback
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"` // Per-attempt fetch timeout
	BackoffMillis  int               `json:"backoff_millis,omitempty"`  // Base backoff between attempts
	Concurrency    int               `json:"concurrency,omitempty"`     // Per-subject collector fan-out limit
	UseBrowser     bool              `json:"use_browser,omitempty"`     // Headless rendering for JS-heavy sites
	Verbose        bool              `json:"verbose,omitempty"`         // Detailed collector logging

	// Cache
	SweepIntervalSeconds int `json:"sweep_interval_seconds,omitempty"` // Background cache sweep cadence

	// Discovery
	SearchAPIKey string `json:"search_api_key,omitempty"` // Custom Search API key
	SearchCX     string `json:"search_cx,omitempty"`      // Custom Search engine id
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Port:                 8080,
		MaxRetries:           3,
		TimeoutSeconds:       30,
		BackoffMillis:        1000,
		Concurrency:          4,
		SweepIntervalSeconds: 300,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills unset fields from environment variables. Intended to run
// after LoadConfig so file values win.
func (c *Config) FromEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.SearchAPIKey == "" {
		c.SearchAPIKey = os.Getenv("SEARCH_API_KEY")
	}
	if c.SearchCX == "" {
		c.SearchCX = os.Getenv("SEARCH_CX")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be in [0, 65535]")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}
	if c.BackoffMillis < 0 {
		return fmt.Errorf("config error: 'backoff_millis' must be non-negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	for _, s := range c.AllowedSources {
		if !types.DataSource(s).Valid() {
			return fmt.Errorf("config error: unknown data source %q in 'allowed_sources'", s)
		}
	}
	for s := range c.Endpoints {
		if !types.DataSource(s).Valid() {
			return fmt.Errorf("config error: unknown data source %q in 'endpoints'", s)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from
// defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.BackoffMillis == 0 {
		result.BackoffMillis = defaults.BackoffMillis
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.SweepIntervalSeconds == 0 {
		result.SweepIntervalSeconds = defaults.SweepIntervalSeconds
	}
	if result.SearchAPIKey == "" {
		result.SearchAPIKey = defaults.SearchAPIKey
	}
	if result.SearchCX == "" {
		result.SearchCX = defaults.SearchCX
	}
	if len(result.AllowedSources) == 0 {
		result.AllowedSources = defaults.AllowedSources
	}
	if len(result.Endpoints) == 0 {
		result.Endpoints = defaults.Endpoints
	}

	return result
}

// AllowedDataSources converts the configured allow-list to typed sources.
func (c *Config) AllowedDataSources() []types.DataSource {
	out := make([]types.DataSource, 0, len(c.AllowedSources))
	for _, s := range c.AllowedSources {
		out = append(out, types.DataSource(s))
	}
	return out
}

// EndpointMap converts the configured endpoint templates to typed keys.
func (c *Config) EndpointMap() map[types.DataSource]string {
	out := make(map[types.DataSource]string, len(c.Endpoints))
	for s, tmpl := range c.Endpoints {
		out[types.DataSource(s)] = tmpl
	}
	return out
}

// Timeout returns the per-attempt fetch timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Backoff returns the base backoff between attempts.
func (c *Config) Backoff() time.Duration {
	return time.Duration(c.BackoffMillis) * time.Millisecond
}

// SweepInterval returns the cache sweeper cadence.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
