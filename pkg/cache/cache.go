// Package cache stores JSON-encoded values under string keys. The catalog
// service uses it for read-through caching of the menu.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/resor-app/resor/pkg/metrics"
)

// Store is implemented by the Redis and in-memory backends. Get reports a
// miss for absent keys and for values that do not decode into dest.
type Store interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Remember returns the cached value for key, or calls load, caches its
// result for ttl and returns it. Cache write failures are ignored.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var out T
	if s.Get(ctx, key, &out) {
		return out, nil
	}
	out, err := load()
	if err != nil {
		return out, err
	}
	_ = s.Set(ctx, key, out, ttl)
	return out, nil
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a process-local Store used when no Redis address is configured.
type Memory struct {
	mu    sync.Mutex
	items map[string]memEntry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: map[string]memEntry{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string, dest any) bool {
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok || json.Unmarshal(e.data, dest) != nil {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("memory").Inc()
	return true
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := memEntry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}
