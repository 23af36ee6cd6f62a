package redis

import (
	"context"
	"time"
)

// Client represents a Redis client interface for testing and abstraction
type Client interface {
	// Set sets a key to a value with an optional TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get gets the value of a key; returns ErrKeyNotFound for missing keys
	Get(ctx context.Context, key string) (string, error)

	// Incr atomically increments a counter key and returns the new value
	Incr(ctx context.Context, key string) (int64, error)

	// Del removes a key
	Del(ctx context.Context, key string) error

	// Expire sets a TTL on a key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping checks the connection to Redis
	Ping(ctx context.Context) error

	// Close closes the Redis connection
	Close() error
}
