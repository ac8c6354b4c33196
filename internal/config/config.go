// Package config loads engine configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Runtime kinds accepted by Config.Runtime.Kind.
const (
	RuntimeGoroutine = "goroutine"
	RuntimeCron      = "cron"
	RuntimeNone      = "none"
)

// Config is the engine configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Admin   AdminConfig   `yaml:"admin"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// LoggingConfig controls the engine logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"SUBAPP_LOG_LEVEL"`
	Format string `yaml:"format" env:"SUBAPP_LOG_FORMAT"`
	Output string `yaml:"output" env:"SUBAPP_LOG_OUTPUT"`
}

// AdminConfig controls the inspection HTTP surface. An empty Addr disables it.
type AdminConfig struct {
	Addr              string `yaml:"addr" env:"SUBAPP_ADMIN_ADDR"`
	RequestsPerSecond int    `yaml:"requests_per_second" env:"SUBAPP_ADMIN_RPS"`
	Burst             int    `yaml:"burst" env:"SUBAPP_ADMIN_BURST"`
}

// RuntimeConfig selects the background-process substrate.
type RuntimeConfig struct {
	Kind     string `yaml:"kind" env:"SUBAPP_RUNTIME"`
	CronSpec string `yaml:"cron_spec" env:"SUBAPP_RUNTIME_CRON_SPEC"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
		Admin:   AdminConfig{RequestsPerSecond: 10, Burst: 20},
		Runtime: RuntimeConfig{Kind: RuntimeGoroutine, CronSpec: "@every 1m"},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the config file or falls back to defaults when the
// file is absent.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// ApplyEnv overrides config fields from the environment. An environment
// with no SUBAPP_* variables set leaves the config untouched.
func (c *Config) ApplyEnv() error {
	if err := envdecode.Decode(c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decode env: %w", err)
	}
	return c.Validate()
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Runtime.Kind {
	case RuntimeGoroutine, RuntimeCron, RuntimeNone, "":
	default:
		return fmt.Errorf("runtime kind %q is not one of goroutine, cron, none", c.Runtime.Kind)
	}
	if c.Admin.RequestsPerSecond < 0 || c.Admin.Burst < 0 {
		return fmt.Errorf("admin rate limits must be non-negative")
	}
	return nil
}
