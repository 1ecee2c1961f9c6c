// Package config loads service configuration from the environment. Every
// variable is prefixed SHOWER_ (SHOWER_HTTP_PORT, SHOWER_STORE_DRIVER, ...)
// and falls back to a usable local-development default.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store driver names accepted by StoreDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config captures environment driven configuration for the shower service.
type Config struct {
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/shower.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// AutoReleaseAfter is the occupancy age past which the monitor frees a
	// stuck shower. 45 minutes matches the product's timeout.
	AutoReleaseAfter time.Duration `envconfig:"AUTO_RELEASE_AFTER" default:"45m"`
	// MinShowerDuration rejects accidental double taps on stop.
	MinShowerDuration time.Duration `envconfig:"MIN_SHOWER_DURATION" default:"10s"`

	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	AlertTolerance time.Duration `envconfig:"ALERT_TOLERANCE" default:"90s"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`

	LogRetention     time.Duration `envconfig:"LOG_RETENTION" default:"24h"`
	HistoryRetention time.Duration `envconfig:"HISTORY_RETENTION" default:"720h"`

	// PushGatewayURL enables web push notifications when set.
	PushGatewayURL string `envconfig:"PUSH_GATEWAY_URL"`

	// APIKeys, when non-empty, requires X-Api-Key on every request.
	APIKeys []string `envconfig:"API_KEYS"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load parses configuration from the current process environment and
// validates cross-field requirements.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("shower", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("config: SHOWER_HTTP_PORT out of range: %d", c.HTTPPort)
	}
	switch c.StoreDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("config: SHOWER_POSTGRES_DSN is required with the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown SHOWER_STORE_DRIVER %q", c.StoreDriver)
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"SHOWER_AUTO_RELEASE_AFTER", c.AutoReleaseAfter},
		{"SHOWER_POLL_INTERVAL", c.PollInterval},
		{"SHOWER_SWEEP_INTERVAL", c.SweepInterval},
		{"SHOWER_LOG_RETENTION", c.LogRetention},
		{"SHOWER_HISTORY_RETENTION", c.HistoryRetention},
	} {
		if d.value <= 0 {
			return fmt.Errorf("config: %s must be positive", d.name)
		}
	}
	if c.MinShowerDuration < 0 {
		return fmt.Errorf("config: SHOWER_MIN_SHOWER_DURATION must not be negative")
	}
	return nil
}

// ListenAddr is the bind address for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
