package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const unreadTTL = 5 * time.Minute

// RedisUnreadCache caches per-user unread counts. Every miss or error falls
// through to the database, so a broken cache only costs latency.
type RedisUnreadCache struct {
	client *redis.Client
}

func NewRedisUnreadCache(client *redis.Client) *RedisUnreadCache {
	return &RedisUnreadCache{client: client}
}

func unreadKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}

// Get returns the cached count and whether it was present.
func (c *RedisUnreadCache) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	count, err := c.client.Get(ctx, unreadKey(userID)).Int()
	if err != nil {
		if err != redis.Nil {
			log.Printf("unread cache: get failed: %v", err)
		}
		return 0, false
	}
	return count, true
}

// Set stores the count with a TTL.
func (c *RedisUnreadCache) Set(ctx context.Context, userID uuid.UUID, count int) {
	if err := c.client.Set(ctx, unreadKey(userID), count, unreadTTL).Err(); err != nil {
		log.Printf("unread cache: set failed: %v", err)
	}
}

// Invalidate drops the cached count after any mutation.
func (c *RedisUnreadCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		log.Printf("unread cache: invalidate failed: %v", err)
	}
}
