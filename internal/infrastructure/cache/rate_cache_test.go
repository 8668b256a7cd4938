package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*RedisRateCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateCache(client, time.Minute, zap.NewNop()), srv
}

func TestRateCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	tenantID := uuid.New()

	_, ok := c.Get(ctx, tenantID, "EUR", "USD")
	assert.False(t, ok)

	rate, err := decimal.NewFromString("1.0850")
	require.NoError(t, err)
	c.Set(ctx, tenantID, "EUR", "USD", rate)

	got, ok := c.Get(ctx, tenantID, "EUR", "USD")
	require.True(t, ok)
	assert.True(t, got.Equal(rate))

	// pairs and tenants do not bleed into each other
	_, ok = c.Get(ctx, tenantID, "USD", "EUR")
	assert.False(t, ok)
	_, ok = c.Get(ctx, uuid.New(), "EUR", "USD")
	assert.False(t, ok)

	c.Invalidate(ctx, tenantID, "EUR", "USD")
	_, ok = c.Get(ctx, tenantID, "EUR", "USD")
	assert.False(t, ok)
}

func TestRateCacheKeyAndTTL(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()
	tenantID := uuid.New()

	c.Set(ctx, tenantID, "EUR", "USD", decimal.RequireFromString("1.1"))

	key := fmt.Sprintf("fx:%s:EUR:USD", tenantID)
	val, err := srv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "1.1", val)
	assert.Equal(t, time.Minute, srv.TTL(key))

	// entries expire on their own
	srv.FastForward(2 * time.Minute)
	_, ok := c.Get(ctx, tenantID, "EUR", "USD")
	assert.False(t, ok)
}

func TestRateCacheUnparseableValue(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()
	tenantID := uuid.New()

	require.NoError(t, srv.Set(fmt.Sprintf("fx:%s:EUR:USD", tenantID), "not-a-number"))
	_, ok := c.Get(ctx, tenantID, "EUR", "USD")
	assert.False(t, ok)
}

func TestNoopRateCache(t *testing.T) {
	c := NoopRateCache{}
	ctx := context.Background()
	tenantID := uuid.New()

	c.Set(ctx, tenantID, "EUR", "USD", decimal.RequireFromString("1.1"))
	_, ok := c.Get(ctx, tenantID, "EUR", "USD")
	assert.False(t, ok)
	c.Invalidate(ctx, tenantID, "EUR", "USD")
}
