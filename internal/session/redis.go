package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"go-chi-calculator/internal/observability"
)

const (
	defaultKeyPrefix        = "calculator:session:"
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

// RedisStore keeps JSON-encoded values in Redis. Every command runs through a
// circuit breaker so a failing Redis is not hammered on every button press.
type RedisStore[T any] struct {
	rdb      *goredis.Client
	breaker  *gobreaker.CircuitBreaker
	newValue func() T
	prefix   string
	ttl      time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*redisConfig)

type redisConfig struct {
	prefix           string
	ttl              time.Duration
	failureThreshold uint32
	openTimeout      time.Duration
}

// WithKeyPrefix sets the prefix prepended to every identifier.
func WithKeyPrefix(prefix string) RedisOption {
	return func(cfg *redisConfig) {
		cfg.prefix = prefix
	}
}

// WithTTL expires entries ttl after their last read or write. Zero keeps them
// forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(cfg *redisConfig) {
		cfg.ttl = ttl
	}
}

// WithBreaker sets how many consecutive failures open the breaker and how long
// it stays open before probing again.
func WithBreaker(failureThreshold uint32, openTimeout time.Duration) RedisOption {
	return func(cfg *redisConfig) {
		cfg.failureThreshold = failureThreshold
		cfg.openTimeout = openTimeout
	}
}

// NewRedisClient creates a go-redis client from a URL such as
// "redis://localhost:6379/0".
func NewRedisClient(redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return goredis.NewClient(opts), nil
}

func NewRedisStore[T any](rdb *goredis.Client, newValue func() T, opts ...RedisOption) *RedisStore[T] {
	cfg := redisConfig{
		prefix:           defaultKeyPrefix,
		failureThreshold: defaultFailureThreshold,
		openTimeout:      defaultOpenTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	threshold := cfg.failureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "session-redis",
		Timeout: cfg.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.Logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			breakerState.Set(breakerStateValue(to))
		},
	})

	return &RedisStore[T]{
		rdb:      rdb,
		breaker:  breaker,
		newValue: newValue,
		prefix:   cfg.prefix,
		ttl:      cfg.ttl,
	}
}

func (s *RedisStore[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if id == "" {
		recordOp(BackendRedis, "get", ErrEmptyIdentifier)
		return zero, ErrEmptyIdentifier
	}

	res, err := s.breaker.Execute(func() (interface{}, error) {
		data, err := s.read(ctx, s.key(id)).Bytes()
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return data, err
	})
	recordOp(BackendRedis, "get", err)
	if err != nil {
		return zero, fmt.Errorf("session: get %q: %w", id, err)
	}

	data, ok := res.([]byte)
	if !ok || data == nil {
		return s.newValue(), nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("session: decode %q: %w", id, err)
	}
	return value, nil
}

func (s *RedisStore[T]) Put(ctx context.Context, id string, value T) error {
	if id == "" {
		recordOp(BackendRedis, "put", ErrEmptyIdentifier)
		return ErrEmptyIdentifier
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: encode %q: %w", id, err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, s.rdb.Set(ctx, s.key(id), data, s.ttl).Err()
	})
	recordOp(BackendRedis, "put", err)
	if err != nil {
		return fmt.Errorf("session: put %q: %w", id, err)
	}
	return nil
}

// read fetches key and, with a TTL configured, restarts its expiry so
// readers are kept alive like writers.
func (s *RedisStore[T]) read(ctx context.Context, key string) *goredis.StringCmd {
	if s.ttl > 0 {
		return s.rdb.GetEx(ctx, key, s.ttl)
	}
	return s.rdb.Get(ctx, key)
}

// Ping verifies the Redis connection.
func (s *RedisStore[T]) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// BreakerState reports the current circuit breaker state.
func (s *RedisStore[T]) BreakerState() gobreaker.State {
	return s.breaker.State()
}

func (s *RedisStore[T]) key(id string) string {
	return s.prefix + id
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
