package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"algoquest/logger"

	"github.com/redis/go-redis/v9"
)

// ProgressCache keeps the hub view of each user in Redis. A nil cache or a
// nil client turns every call into a miss.
type ProgressCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

func NewProgressCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *ProgressCache {
	return &ProgressCache{
		redis: client,
		ttl:   ttl,
		log:   log.With("service", "ProgressCache"),
	}
}

func progressKey(userID uint) string {
	return fmt.Sprintf("progress:%d", userID)
}

func (c *ProgressCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

func (c *ProgressCache) Get(ctx context.Context, userID uint) ([]MissionProgressView, bool) {
	if !c.enabled() {
		return nil, false
	}

	data, err := c.redis.Get(ctx, progressKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Redis error reading progress", "user_id", userID, "error", err)
		}
		return nil, false
	}

	var view []MissionProgressView
	if err := json.Unmarshal(data, &view); err != nil {
		c.log.Warn("Failed to unmarshal cached progress", "user_id", userID, "error", err)
		return nil, false
	}
	return view, true
}

func (c *ProgressCache) Set(ctx context.Context, userID uint, view []MissionProgressView) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(view)
	if err != nil {
		c.log.Warn("Failed to marshal progress", "user_id", userID, "error", err)
		return
	}
	if err := c.redis.Set(ctx, progressKey(userID), data, c.ttl).Err(); err != nil {
		c.log.Warn("Failed to store progress in Redis", "user_id", userID, "error", err)
	}
}

func (c *ProgressCache) Invalidate(ctx context.Context, userID uint) {
	if !c.enabled() {
		return
	}
	if err := c.redis.Del(ctx, progressKey(userID)).Err(); err != nil {
		c.log.Warn("Failed to drop cached progress", "user_id", userID, "error", err)
	}
}
