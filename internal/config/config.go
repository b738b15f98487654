// Package config loads service configuration from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
	"go-simpler.org/env"

	"go-chi-calculator/internal/expression"
	"go-chi-calculator/internal/session"
)

const (
	EnvProduction = "production"

	minSecretLength = 32
)

type Config struct {
	AppEnv          string        `env:"APP_ENV" default:"development"`
	HTTPAddr        string        `env:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"5s"`

	SessionSecret       string        `env:"SESSION_SECRET"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" default:"false"`
	SessionMaxAge       time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days

	SessionBackend       string        `env:"SESSION_BACKEND" default:"memory"`
	RedisURL             string        `env:"REDIS_URL"`
	SessionTTL           time.Duration `env:"SESSION_TTL" default:"168h"`
	SessionIdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"24h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"10m"`

	EvaluatorEngine string `env:"EVALUATOR_ENGINE" default:"expr"`

	OTelEnabled     bool `env:"OTEL_ENABLED" default:"true"`
	OTelLogsEnabled bool `env:"OTEL_LOGS_ENABLED" default:"false"`
}

// Load reads the environment into a Config. Outside production a missing
// SESSION_SECRET is replaced by a random one, which invalidates cookies on
// every restart.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if cfg.SessionSecret == "" && cfg.AppEnv != EnvProduction {
		cfg.SessionSecret = hex.EncodeToString(securecookie.GenerateRandomKey(minSecretLength))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.SessionBackend {
	case session.BackendMemory:
		if c.SessionSweepInterval <= 0 {
			return errors.New("SESSION_SWEEP_INTERVAL must be positive")
		}
	case session.BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", session.BackendMemory, session.BackendRedis, c.SessionBackend)
	}

	switch c.EvaluatorEngine {
	case expression.EngineExpr, expression.EngineCEL:
	default:
		return fmt.Errorf("EVALUATOR_ENGINE must be %q or %q, got %q", expression.EngineExpr, expression.EngineCEL, c.EvaluatorEngine)
	}

	if len(c.SessionSecret) < minSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSecretLength)
	}

	if c.SessionMaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}

	return nil
}
