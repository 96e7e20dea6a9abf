// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Loading errors wrap ErrLoadConfig; validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
)

// Store drivers understood by the repository adapter.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the submission store: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the data source name for sqlite (file path) or postgres (URL).
	StoreDSN string `koanf:"store_dsn"`

	// CatalogPath optionally points at a YAML catalog replacing the built-in one.
	CatalogPath string `koanf:"catalog_path"`

	// DedupeSize bounds the submission idempotency tracker.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxUploadBytes caps request bodies of uploads and submissions.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// CORSOrigins is a comma-separated allow list for the survey form.
	CORSOrigins string `koanf:"cors_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		StoreDriver:    DriverMemory,
		DedupeSize:     100_000,
		MaxUploadBytes: 4 << 20,
		CORSOrigins:    "*",
	}
}

// Origins splits CORSOrigins into a clean list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: store_dsn is required for driver %q", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}
