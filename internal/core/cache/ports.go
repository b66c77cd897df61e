package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist. Callers should
// test with errors.Is rather than matching error text.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache defines the caching operations interface following hexagonal architecture.
// This is a port that can be implemented by different cache providers (Redis, Memcached, etc.).
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// GetJSON retrieves and unmarshals a cached JSON value. The second return
// value is false on a cache miss.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var out T

	data, err := c.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("failed to unmarshal cached value for %s: %w", key, err)
	}
	return out, true, nil
}

// SetJSON marshals a value and stores it under key with the given TTL.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
