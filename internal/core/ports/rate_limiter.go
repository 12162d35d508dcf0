package ports

import (
	"context"
	"time"
)

// RateLimiterService decides whether a caller identified by key (client IP)
// may proceed.
type RateLimiterService interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining, limit int, reset time.Time, err error)
}

// RateLimitRepository stores fixed-window request counters.
type RateLimitRepository interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}
