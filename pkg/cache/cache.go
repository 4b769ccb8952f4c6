// Package cache provides byte-level key/value stores used to persist
// heuristic estimates and solved plans between runs.
//
// # Backends
//
//   - [NullCache]: stores nothing; the default when caching is disabled
//   - [FileCache]: one JSON file per key under a directory, for CLI use
//   - [RedisCache]: a Redis server, for services sharing results
//
// All backends implement [Cache]. Keys are produced by a [Keyer] so that
// every backend uses the same naming scheme:
//
//	k := cache.NewDefaultKeyer()
//	c, _ := cache.NewFileCache(dir)
//	key := k.HeuristicKey("naive", 6, 8, 1)
//	c.Set(ctx, key, data, 0)
//
// # Errors
//
// Backends report I/O failures as errors. Network failures from
// [RedisCache] are wrapped with [Retryable] so callers can retry them with
// [Backoff].
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with optional per-entry expiry.
type Cache interface {
	// Get returns the data stored under key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}
