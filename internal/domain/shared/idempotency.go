package shared

import (
	"context"
	"time"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore records claimed keys. Payment requests claim their
// Idempotency-Key and event handlers claim event IDs.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl; false means someone already holds it
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release gives a claim back so the work can be retried
	Release(ctx context.Context, key string) error
	Close() error
}

type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig remembers keys for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: defaultIdempotencyTTL, Enabled: true}
}
