// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Store StoreConfig
	Sweep SweepConfig
	Leave LeaveConfig
}

// AppConfig holds HTTP server configuration.
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	// Path of the SQLite database file; ":memory:" for ephemeral runs.
	DBPath string
}

// SweepConfig controls the background expiry sweep. The sweep is
// advisory; disabling it never changes a balance.
type SweepConfig struct {
	Enabled  bool
	Interval time.Duration
}

// LeaveConfig holds leave-policy defaults.
type LeaveConfig struct {
	// DefaultAnnualEntitlement is the paid-leave allotment, in days,
	// applied when no explicit allotment row exists for an employee.
	DefaultAnnualEntitlement int
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	// Missing .env is fine; containers set the environment directly.
	_ = godotenv.Load()

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.Store = StoreConfig{
		DBPath: getEnv("DB_PATH", "./data/rosterly.db"),
	}

	sweepInterval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	config.Sweep = SweepConfig{
		Enabled:  getEnvBool("SWEEP_ENABLED", true),
		Interval: sweepInterval,
	}

	entitlement, err := strconv.Atoi(getEnv("LEAVE_ANNUAL_ENTITLEMENT", "18"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_ANNUAL_ENTITLEMENT: %w", err)
	}
	config.Leave = LeaveConfig{
		DefaultAnnualEntitlement: entitlement,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if c.Store.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Sweep.Enabled && c.Sweep.Interval < time.Minute {
		return fmt.Errorf("SWEEP_INTERVAL must be at least 1m, got %s", c.Sweep.Interval)
	}
	if c.Leave.DefaultAnnualEntitlement < 0 {
		return fmt.Errorf("LEAVE_ANNUAL_ENTITLEMENT must not be negative")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
