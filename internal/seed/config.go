// Package seed fills a running flow-fit service with generated survey
// submissions and checks the team analysis it reports back.
package seed

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Respondents int           // Number of profiles to generate and submit
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Generator seed, 0 picks one from the clock
	Probes      int           // Submissions resent to check duplicate handling
	OutputFile  string        // Optional JSON file receiving the generated profiles
	Verbose     bool
}

// DefaultConfig returns the settings used when no flag overrides them.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:9080",
		Respondents: 200,
		Workers:     runtime.NumCPU() * workerMultiplier,
		Timeout:     30 * time.Second,
		Probes:      5,
	}
}

// Validate checks the settings and normalizes the base URL.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Respondents <= 0:
		return fmt.Errorf("%w: respondents must be positive, got %d", ErrInvalidConfig, c.Respondents)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.Probes < 0:
		return fmt.Errorf("%w: probes must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Stats holds the outcome of a seeding run.
type Stats struct {
	Generated       int
	Submitted       int
	Created         int
	Duplicate       int
	Failed          int
	ProbesConfirmed int
	RespondentsBase int
	RespondentsNow  int
	CRI             float64
	Band            string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

const workerMultiplier = 2
