// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and ENGCOMP_* environment variables on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// Storage drivers accepted by StorageDriver.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StorageDriver selects the durable backend: file, sqlite or memory.
	StorageDriver string `koanf:"storage_driver"`

	// StoragePath is a directory for the file driver and a database file for sqlite.
	StoragePath string `koanf:"storage_path"`

	// StorageKey names the single key holding the serialized roster.
	StorageKey string `koanf:"storage_key"`

	// LeaderboardLimit is the default number of standings returned.
	LeaderboardLimit int `koanf:"leaderboard_limit"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// AdminPassphrase gates administrative routes. Empty rejects every attempt.
	AdminPassphrase string `koanf:"admin_passphrase"`

	// WorkerCount sets the number of advice workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory advice queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the idempotency key cache for awards.
	DedupeSize int `koanf:"dedupe_size"`

	AIAPIKey      string `koanf:"ai_api_key"`
	AIBaseURL     string `koanf:"ai_base_url"`
	AIModel       string `koanf:"ai_model"`
	AITimeoutMS   int    `koanf:"ai_timeout_ms"`
	AIMaxAttempts int    `koanf:"ai_max_attempts"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		StorageDriver:       DriverFile,
		StoragePath:         "./data",
		StorageKey:          "english_comp_students",
		LeaderboardLimit:    10,
		MaxLeaderboardLimit: 100,
		WorkerCount:         2,
		QueueSize:           256,
		DedupeSize:          10_000,
		AIBaseURL:           "https://generativelanguage.googleapis.com",
		AIModel:             "gemini-2.5-flash",
		AITimeoutMS:         15_000,
		AIMaxAttempts:       2,
	}
}

// AITimeout returns the per-request text generation timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutMS) * time.Millisecond
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StorageDriver {
	case DriverFile, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage_driver %q", ErrInvalidConfig, c.StorageDriver)
	}
	if c.StorageDriver != DriverMemory && c.StoragePath == "" {
		return fmt.Errorf("%w: storage_path must not be empty", ErrInvalidConfig)
	}
	if c.StorageKey == "" {
		return fmt.Errorf("%w: storage_key must not be empty", ErrInvalidConfig)
	}
	if c.MaxLeaderboardLimit < 1 {
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	if c.LeaderboardLimit < 1 || c.LeaderboardLimit > c.MaxLeaderboardLimit {
		return fmt.Errorf("%w: leaderboard_limit must be between 1 and %d", ErrInvalidConfig, c.MaxLeaderboardLimit)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.DedupeSize < 1 {
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	}
	if c.AIMaxAttempts < 1 {
		return fmt.Errorf("%w: ai_max_attempts must be positive", ErrInvalidConfig)
	}
	return nil
}
