/*
Package config loads server configuration from the environment.

PURPOSE:
  One struct holds every knob the server reads at startup. Values come
  from RETIREMENT_* environment variables with sensible defaults;
  cmd/server lets command-line flags override any of them.

ENVIRONMENT:
  RETIREMENT_PORT            HTTP port (8080)
  RETIREMENT_DB              SQLite path, ":memory:" allowed (retirement.db)
  RETIREMENT_LOG_LEVEL       debug, info, warn, error (info)
  RETIREMENT_LOG_PRETTY      Console output instead of JSON (false)
  RETIREMENT_CORS_ORIGINS    Comma-separated allowed origins
  RETIREMENT_SWEEP_ENABLED   Run the periodic eligibility sweep (false)
  RETIREMENT_SWEEP_INTERVAL  Sweep period (24h)
  RETIREMENT_BATCH_WORKERS   Concurrency of batch evaluation (4)

SEE ALSO:
  - cmd/server/main.go: Flag overrides
  - logger.go: zerolog construction
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration.
type Config struct {
	Port          int           `env:"RETIREMENT_PORT" envDefault:"8080"`
	DBPath        string        `env:"RETIREMENT_DB" envDefault:"retirement.db"`
	LogLevel      string        `env:"RETIREMENT_LOG_LEVEL" envDefault:"info"`
	LogPretty     bool          `env:"RETIREMENT_LOG_PRETTY" envDefault:"false"`
	CORSOrigins   []string      `env:"RETIREMENT_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
	SweepEnabled  bool          `env:"RETIREMENT_SWEEP_ENABLED" envDefault:"false"`
	SweepInterval time.Duration `env:"RETIREMENT_SWEEP_INTERVAL" envDefault:"24h"`
	BatchWorkers  int           `env:"RETIREMENT_BATCH_WORKERS" envDefault:"4"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.SweepEnabled && c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.SweepInterval)
	}
	if c.BatchWorkers <= 0 {
		return fmt.Errorf("batch workers must be positive, got %d", c.BatchWorkers)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
