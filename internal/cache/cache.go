// Package cache provides the small key/value cache behind the market
// ticker: in-memory by default, Redis when configured for multi-instance
// deployments.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is a byte-value cache. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss when absent/expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key; ttl 0 means the default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Error is a sentinel error type for cache operations.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// Options configures New.
type Options struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string
	// Prefix is prepended to every Redis key.
	Prefix string
	// DefaultTTL applies when Set is called with ttl 0.
	DefaultTTL time.Duration
}

// New returns a Redis cache when configured, falling back to memory when
// the connection fails so a missing Redis never takes the site down.
func New(opts Options) Cache {
	if opts.RedisURL != "" {
		c, err := NewRedisCache(opts.RedisURL, opts.Prefix, opts.DefaultTTL)
		if err == nil {
			return c
		}
		slog.Warn("redis unavailable, using in-memory cache", "error", err)
	}
	return NewMemoryCache(opts.DefaultTTL)
}
