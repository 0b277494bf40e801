package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"lingkod/internal/tenant/models"
)

const redisPrefix = "tenant:domain:"

// Redis shares resolved tenant configs across instances. Serialization
// errors and Redis outages degrade to cache misses; the resolver then falls
// through to the store, so the cache can never take resolution down.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis builds a Redis-backed tenant cache.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (*models.Config, bool) {
	raw, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var cfg models.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, false
	}
	return &cfg, true
}

func (r *Redis) Set(ctx context.Context, key string, cfg *models.Config, ttl time.Duration) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, redisPrefix+key, raw, ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, key string) {
	_ = r.client.Del(ctx, redisPrefix+key).Err()
}

func (r *Redis) InvalidateAll(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, redisPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = r.client.Del(ctx, iter.Val()).Err()
	}
}
