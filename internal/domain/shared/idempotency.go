package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers already-applied external notifications so a
// redelivered webhook can be acknowledged without re-entering the settlement
// path. The transaction row lock remains the authority; this store is only a
// fast path and may lose entries without affecting correctness.
type IdempotencyStore interface {
	// MarkProcessed marks a notification as processed with a TTL.
	// Returns true if it was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a notification has already been processed.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for webhook replay marking
type IdempotencyConfig struct {
	// TTL is how long a processed notification key is retained.
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether the fast path is used at all
	Enabled bool
}

// DefaultIdempotencyConfig returns the default replay-marking configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
