// Package cache stores finished cluster runs so that repeated runs over the
// same inputs skip propagation.
//
// Backends implement [Cache]: [NullCache] disables caching, [FileCache]
// keeps entries under a local directory for CLI use, and [RedisCache] shares
// entries between processes such as several server replicas. Keys come from
// a [Keyer], which derives them from the input content hash and every option
// that influences the result.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	// TTLCluster applies to propagation results. Results depend only on
	// content-addressed inputs, so they stay valid for long.
	TTLCluster = 7 * 24 * time.Hour

	// TTLValidation applies to batch ISBN validation results.
	TTLValidation = 24 * time.Hour
)
