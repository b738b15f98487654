// Package session keeps per-user values keyed by an opaque identifier and
// resolves that identifier from a signed cookie.
//
// A Store only loads and saves a single value for a single identifier. Get
// never fails on a miss: it hands back a fresh default value which is not
// persisted until the caller Puts it. Writes are last-write-wins.
package session

import (
	"context"
	"errors"
)

var ErrEmptyIdentifier = errors.New("session: identifier must not be empty")

// Store loads and saves one value per identifier.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	Put(ctx context.Context, id string, value T) error
}

// Backend labels used in metrics and logs.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)
