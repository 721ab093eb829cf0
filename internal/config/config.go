package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config holds all labelscan configuration
type Config struct {
	// Logging
	LogLevel string

	// Output
	Format  string
	Quiet   bool
	NoColor bool

	// Scanning
	Workers  int
	Carriers []string

	// Scan cache
	DisableCache bool
	CachePath    string
	CacheTTL     time.Duration
}

const (
	// MaxWorkers is the highest accepted scan.workers value
	MaxWorkers = 64

	DefaultCachePath = "./labelscan-cache.db"
	DefaultCacheTTL  = 24 * time.Hour
)

// DefaultCarriers is the production recognizer chain order
var DefaultCarriers = []string{"tiktok_jt", "shopee_spx", "shopee_ghn"}

var (
	validFormats   = []string{"table", "json"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if !contains(validFormats, c.Format) {
		return fmt.Errorf("invalid format: %s (must be one of: %s)", c.Format, strings.Join(validFormats, ", "))
	}

	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", MaxWorkers, c.Workers)
	}

	if len(c.Carriers) == 0 {
		return fmt.Errorf("carrier list cannot be empty")
	}

	if !c.DisableCache {
		if c.CachePath == "" {
			return fmt.Errorf("cache path cannot be empty")
		}
		if c.CacheTTL <= 0 {
			return fmt.Errorf("cache TTL must be positive")
		}
	}

	return nil
}

// SlogLevel maps LogLevel to a slog.Level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
