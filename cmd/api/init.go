package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

// initMetrics initialises all metric providers and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}

// initStateStore builds the session backend named by the config. The returned
// func releases whatever the backend holds.
func initStateStore(ctx context.Context, cfg *config.Config) (session.Store[calculator.State], func(), error) {
	switch cfg.SessionBackend {
	case session.BackendRedis:
		rdb, err := session.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}

		store := session.NewRedisStore(rdb, calculator.NewState, session.WithTTL(cfg.SessionTTL))
		if err := store.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}

		return store, func() { _ = rdb.Close() }, nil

	default:
		store := session.NewMemoryStore(calculator.NewState)

		sweepCtx, cancel := context.WithCancel(ctx)
		go store.RunSweeper(sweepCtx, cfg.SessionSweepInterval, cfg.SessionIdleTimeout)

		observability.Logger.Info("using in-memory session store",
			zap.Duration("idle_timeout", cfg.SessionIdleTimeout),
		)
		return store, cancel, nil
	}
}
