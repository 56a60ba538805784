package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"crf-service/internal/domain/study"
)

// StructureKey is the Redis key of the cached study tree.
const StructureKey = "study:structure"

// StructureCache caches the event/CRF tree. Entries expire after the TTL;
// the service never edits the study design itself.
type StructureCache interface {
	Get(ctx context.Context) ([]study.Event, error)
	Set(ctx context.Context, tree []study.Event) error
}

// RedisStructureCache implements StructureCache on Redis.
type RedisStructureCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisStructureCache creates a new Redis-backed study structure cache.
func NewRedisStructureCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisStructureCache {
	return &RedisStructureCache{client: client, ttl: ttl, log: log}
}

// Get returns the cached tree, or nil on a miss.
func (c *RedisStructureCache) Get(ctx context.Context) ([]study.Event, error) {
	data, err := c.client.Get(ctx, StructureKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get study structure from cache", zap.Error(err))
		return nil, err
	}

	var tree []study.Event
	if err := json.Unmarshal(data, &tree); err != nil {
		c.log.Error("failed to unmarshal cached study structure", zap.Error(err))
		return nil, err
	}
	return tree, nil
}

// Set stores the tree with TTL.
func (c *RedisStructureCache) Set(ctx context.Context, tree []study.Event) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, StructureKey, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to cache study structure", zap.Error(err))
		return err
	}
	c.log.Debug("cached study structure", zap.Int("events", len(tree)), zap.Duration("ttl", c.ttl))
	return nil
}
