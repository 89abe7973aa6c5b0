package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/resor-app/resor/pkg/metrics"
)

// Redis is a Store backed by go-redis.
type Redis struct {
	rdb *redis.Client
}

// Connect dials addr and verifies it with a ping.
func Connect(ctx context.Context, addr, password string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func (r *Redis) Get(ctx context.Context, key string, dest any) bool {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil || json.Unmarshal(val, dest) != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, data, ttl).Err()
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

// Ping reports whether Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.rdb.Close() }
