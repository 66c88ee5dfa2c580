package service

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const unreadKeyPrefix = "quickdesk:unread:"

// UnreadCache caches per-recipient unread notification counts in redis.
// A nil client disables caching; every lookup then misses and counts are
// recomputed from the store.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewUnreadCache builds the cache. client may be nil.
func NewUnreadCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *UnreadCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UnreadCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached count and whether the entry was warm.
func (c *UnreadCache) Get(ctx context.Context, email string) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, unreadKeyPrefix+email).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("unread cache read failed", zap.Error(err))
		}
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count with the configured TTL.
func (c *UnreadCache) Set(ctx context.Context, email string, count int) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, unreadKeyPrefix+email, strconv.Itoa(count), c.ttl).Err(); err != nil {
		c.logger.Warn("unread cache write failed", zap.Error(err))
	}
}

// Invalidate drops the entry after fanout or mark-read.
func (c *UnreadCache) Invalidate(ctx context.Context, email string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, unreadKeyPrefix+email).Err(); err != nil {
		c.logger.Warn("unread cache invalidation failed", zap.Error(err))
	}
}
