package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"go-chi-calculator/internal/observability"
)

// MemoryStore keeps values in process memory. Entries live until the process
// exits or Sweep evicts them for being idle. Both Get and Put count as use.
type MemoryStore[T any] struct {
	mu       sync.RWMutex
	records  map[string]memoryRecord[T]
	newValue func() T
	clock    clockwork.Clock
}

type memoryRecord[T any] struct {
	value    T
	lastSeen time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	clock clockwork.Clock
}

// WithClock replaces the wall clock used to stamp writes.
func WithClock(clock clockwork.Clock) MemoryOption {
	return func(cfg *memoryConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// NewMemoryStore returns an empty store; newValue builds the default handed
// out for unknown identifiers.
func NewMemoryStore[T any](newValue func() T, opts ...MemoryOption) *MemoryStore[T] {
	cfg := memoryConfig{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &MemoryStore[T]{
		records:  map[string]memoryRecord[T]{},
		newValue: newValue,
		clock:    cfg.clock,
	}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	if id == "" {
		var zero T
		recordOp(BackendMemory, "get", ErrEmptyIdentifier)
		return zero, ErrEmptyIdentifier
	}

	s.mu.Lock()
	record, ok := s.records[id]
	if ok {
		record.lastSeen = s.clock.Now()
		s.records[id] = record
	}
	s.mu.Unlock()

	recordOp(BackendMemory, "get", nil)
	if !ok {
		return s.newValue(), nil
	}
	return record.value, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, value T) error {
	if id == "" {
		recordOp(BackendMemory, "put", ErrEmptyIdentifier)
		return ErrEmptyIdentifier
	}

	s.mu.Lock()
	s.records[id] = memoryRecord[T]{value: value, lastSeen: s.clock.Now()}
	size := len(s.records)
	s.mu.Unlock()

	recordOp(BackendMemory, "put", nil)
	activeSessions.WithLabelValues(BackendMemory).Set(float64(size))
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Sweep removes entries not read or written for longer than maxIdle and
// returns how many were removed.
func (s *MemoryStore[T]) Sweep(maxIdle time.Duration) int {
	now := s.clock.Now()

	s.mu.Lock()
	removed := 0
	for id, record := range s.records {
		if now.Sub(record.lastSeen) > maxIdle {
			delete(s.records, id)
			removed++
		}
	}
	size := len(s.records)
	s.mu.Unlock()

	activeSessions.WithLabelValues(BackendMemory).Set(float64(size))
	sweptSessions.Add(float64(removed))
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *MemoryStore[T]) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if removed := s.Sweep(maxIdle); removed > 0 {
				observability.Logger.Info("swept idle sessions",
					zap.Int("removed", removed),
					zap.Int("remaining", s.Len()),
				)
			}
		}
	}
}
