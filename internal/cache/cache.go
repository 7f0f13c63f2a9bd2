package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Set stores a key-value pair with expiration
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Get retrieves a value by key; a missing key returns "" and no error
	Get(ctx context.Context, key string) (string, error)

	// Close closes the cache connection
	Close() error
}
