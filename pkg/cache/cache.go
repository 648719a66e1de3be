// Package cache stores generated puzzles and rendered artifacts.
//
// Generation with an explicit seed is deterministic, so the runner in
// package pipeline can key its output on the options alone and skip the
// geometry work on a repeat request. Three backends implement [Cache]:
//
//   - [FileCache] for the CLI, one JSON file per entry under a directory
//   - [RedisCache] for the API server, shared between replicas
//   - [NullCache] when caching is disabled
//
// Keys come from a [Keyer], so deployments can namespace them with
// [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Time-to-live for each kind of entry. Zero means no expiry.
const (
	TTLPuzzle   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypePuzzle   = "puzzle"
	KeyTypeArtifact = "artifact"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return &NullCache{} }

func (c *NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (c *NullCache) Delete(context.Context, string) error                     { return nil }
func (c *NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
