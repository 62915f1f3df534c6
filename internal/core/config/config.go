package config

import (
	"time"

	"github.com/nmhoang23/rotauth/internal/api"
	"github.com/nmhoang23/rotauth/internal/infra/store"
	"github.com/nmhoang23/rotauth/internal/login"
	"github.com/nmhoang23/rotauth/internal/pool"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Pool    PoolConfig    `yaml:"pool"`
	Store   StoreConfig   `yaml:"store"`
	Retry   RetryConfig   `yaml:"retry"`
	Runner  RunnerConfig  `yaml:"runner"`
	API     APIConfig     `yaml:"api"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// PoolConfig holds resource pool settings. Durations are milliseconds.
type PoolConfig struct {
	Source            string  `yaml:"source"`
	DefaultCooldownMs int64   `yaml:"default_cooldown_ms"`
	MaxCooldownMs     int64   `yaml:"max_cooldown_ms"`
	BackoffFactor     float64 `yaml:"backoff_factor"`
	DecayIntervalMs   int64   `yaml:"decay_interval_ms"`
	AcquireWait       string  `yaml:"acquire_wait"` // none, block
	AcquireMaxWaitMs  int64   `yaml:"acquire_max_wait_ms"`
}

// StoreConfig selects the stats persistence backend.
type StoreConfig struct {
	Backend  string               `yaml:"backend"` // file, redis, postgres, none
	Path     string               `yaml:"path"`
	Redis    store.RedisConfig    `yaml:"redis"`
	Postgres store.PostgresConfig `yaml:"postgres"`
}

// RetryConfig holds orchestrator settings.
type RetryConfig struct {
	MaxAttempts           int    `yaml:"max_attempts"`
	AttemptTimeoutMs      int64  `yaml:"attempt_timeout_ms"`
	ReportAccountOutcomes string `yaml:"report_account_outcomes"` // success, skip
	AllowDirect           bool   `yaml:"allow_direct"`
}

// RunnerConfig points at the external automation service.
type RunnerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// APIConfig holds admission settings for the login endpoint.
type APIConfig struct {
	MaxConcurrent int   `yaml:"max_concurrent"`
	MaxWaitMs     int64 `yaml:"max_wait_ms"`
}

// PoolSettings converts to pool.Config.
func (c PoolConfig) PoolSettings() pool.Config {
	return pool.Config{
		DefaultCooldown: time.Duration(c.DefaultCooldownMs) * time.Millisecond,
		MaxCooldown:     time.Duration(c.MaxCooldownMs) * time.Millisecond,
		BackoffFactor:   c.BackoffFactor,
		DecayInterval:   time.Duration(c.DecayIntervalMs) * time.Millisecond,
		BlockOnEmpty:    c.AcquireWait == "block",
		MaxWait:         time.Duration(c.AcquireMaxWaitMs) * time.Millisecond,
	}
}

// LoginSettings converts to login.Config.
func (c RetryConfig) LoginSettings() login.Config {
	return login.Config{
		MaxAttempts:       c.MaxAttempts,
		AttemptTimeout:    time.Duration(c.AttemptTimeoutMs) * time.Millisecond,
		VindicateAccounts: c.ReportAccountOutcomes != "skip",
		AllowDirect:       c.AllowDirect,
	}
}

// APISettings converts to api.Config.
func (c AppConfig) APISettings() api.Config {
	return api.Config{
		Port:          c.Server.Port,
		MaxConcurrent: c.API.MaxConcurrent,
		MaxWait:       time.Duration(c.API.MaxWaitMs) * time.Millisecond,
	}
}
