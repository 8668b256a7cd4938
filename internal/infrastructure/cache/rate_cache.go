package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RedisRateCache caches resolved FX rates in Redis with a short TTL.
// All failures are logged and swallowed; callers always fall back to
// storage on a miss.
type RedisRateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRateCache creates a Redis-backed rate cache
func NewRedisRateCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisRateCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRateCache{client: client, ttl: ttl, logger: logger}
}

func rateKey(tenantID uuid.UUID, quote, base string) string {
	return fmt.Sprintf("fx:%s:%s:%s", tenantID, quote, base)
}

// Get returns the cached rate for the pair, if present
func (c *RedisRateCache) Get(ctx context.Context, tenantID uuid.UUID, quote, base string) (decimal.Decimal, bool) {
	val, err := c.client.Get(ctx, rateKey(tenantID, quote, base)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("rate cache read failed", zap.Error(err))
		}
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		c.logger.Warn("rate cache held unparseable value", zap.String("value", val))
		return decimal.Zero, false
	}
	return rate, true
}

// Set stores the rate for the pair
func (c *RedisRateCache) Set(ctx context.Context, tenantID uuid.UUID, quote, base string, rate decimal.Decimal) {
	if err := c.client.Set(ctx, rateKey(tenantID, quote, base), rate.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("rate cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached rate for the pair
func (c *RedisRateCache) Invalidate(ctx context.Context, tenantID uuid.UUID, quote, base string) {
	if err := c.client.Del(ctx, rateKey(tenantID, quote, base)).Err(); err != nil {
		c.logger.Warn("rate cache invalidation failed", zap.Error(err))
	}
}

// NoopRateCache never hits; used when Redis is disabled
type NoopRateCache struct{}

// Get implements the cache with a permanent miss
func (NoopRateCache) Get(context.Context, uuid.UUID, string, string) (decimal.Decimal, bool) {
	return decimal.Zero, false
}

// Set discards the value
func (NoopRateCache) Set(context.Context, uuid.UUID, string, string, decimal.Decimal) {}

// Invalidate does nothing
func (NoopRateCache) Invalidate(context.Context, uuid.UUID, string, string) {}
