package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lettermark/newsletter/internal/application/services"
)

type rateLimitRepoMock struct {
	incrementFn func(ctx context.Context, key string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *rateLimitRepoMock) IncrementWindow(ctx context.Context, key string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	return m.incrementFn(ctx, key, window, keyPrefix, ttl)
}

func TestRateLimiter_AllowsUnderBurst(t *testing.T) {
	windowStart := time.Now().Truncate(time.Minute)
	repo := &rateLimitRepoMock{incrementFn: func(ctx context.Context, key string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
		require.Equal(t, "203.0.113.7", key)
		require.Equal(t, "ratelimit:signup", keyPrefix)
		return 3, windowStart, nil
	}}
	svc := services.NewRateLimiterService(repo, &services.RateLimiterConfig{
		RequestsPerMinute: 10,
		BurstMultiplier:   2.0,
	}, quietLogger())

	allowed, remaining, limit, reset, err := svc.Allow(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 17, remaining) // burst of 20, 3 consumed
	require.Equal(t, 10, limit)
	require.Equal(t, windowStart.Add(time.Minute), reset)
}

func TestRateLimiter_DeniesOverBurst(t *testing.T) {
	repo := &rateLimitRepoMock{incrementFn: func(ctx context.Context, key string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
		return 21, time.Now(), nil
	}}
	svc := services.NewRateLimiterService(repo, &services.RateLimiterConfig{
		RequestsPerMinute: 10,
		BurstMultiplier:   2.0,
	}, quietLogger())

	allowed, remaining, _, _, err := svc.Allow(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
}

func TestRateLimiter_FailsOpenOnRepositoryError(t *testing.T) {
	repo := &rateLimitRepoMock{incrementFn: func(ctx context.Context, key string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
		return 0, time.Time{}, errors.New("redis unavailable")
	}}
	svc := services.NewRateLimiterService(repo, nil, quietLogger())

	allowed, _, _, _, err := svc.Allow(context.Background(), "203.0.113.7")
	require.Error(t, err)
	require.True(t, allowed, "counter outage must not block signups")
}
