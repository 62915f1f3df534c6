package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file. Environment variables in the
// form ${VAR} are expanded before parsing. Defaults cover every tunable, so
// an empty file yields a working configuration.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Pool.Source == "" {
		cfg.Pool.Source = "proxies.txt"
	}
	if cfg.Pool.DefaultCooldownMs == 0 {
		cfg.Pool.DefaultCooldownMs = 1000
	}
	if cfg.Pool.MaxCooldownMs == 0 {
		cfg.Pool.MaxCooldownMs = 300000
	}
	if cfg.Pool.BackoffFactor == 0 {
		cfg.Pool.BackoffFactor = 2.0
	}
	if cfg.Pool.DecayIntervalMs == 0 {
		cfg.Pool.DecayIntervalMs = 600000
	}
	if cfg.Pool.AcquireWait == "" {
		cfg.Pool.AcquireWait = "none"
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "file"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "data/resource_stats.json"
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.AttemptTimeoutMs == 0 {
		cfg.Retry.AttemptTimeoutMs = 60000
	}
	if cfg.Retry.ReportAccountOutcomes == "" {
		cfg.Retry.ReportAccountOutcomes = "success"
	}

	if cfg.API.MaxConcurrent == 0 {
		cfg.API.MaxConcurrent = 8
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
