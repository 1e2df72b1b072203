package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Sandbox   SandboxConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// SandboxConfig holds per-run budget configuration.
type SandboxConfig struct {
	MemoryLimitMB     int64 `envconfig:"SANDBOX_MEMORY_LIMIT_MB" default:"128"`
	TimeoutMs         int64 `envconfig:"SANDBOX_TIMEOUT_MS" default:"5000"`
	MaxConcurrentRuns int   `envconfig:"SANDBOX_MAX_CONCURRENT_RUNS" default:"8"`
}

// Timeout returns the default total-run deadline as a duration.
func (c SandboxConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Sandbox: SandboxConfig{
			MemoryLimitMB:     128,
			TimeoutMs:         5000,
			MaxConcurrentRuns: 8,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Sandbox.MemoryLimitMB <= 0 {
		return fmt.Errorf("sandbox memory limit must be positive, got %d", c.Sandbox.MemoryLimitMB)
	}
	if c.Sandbox.TimeoutMs <= 0 {
		return fmt.Errorf("sandbox timeout must be positive, got %d", c.Sandbox.TimeoutMs)
	}
	if c.Sandbox.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("max concurrent runs must be positive, got %d", c.Sandbox.MaxConcurrentRuns)
	}
	return nil
}
