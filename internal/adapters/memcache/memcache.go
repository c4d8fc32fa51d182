// Package memcache holds in-process caches backed by an expirable LRU.
package memcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
)

// DistanceMemo implements ports.DistanceMemo. Concurrent misses on the same key
// may compute twice; the last Add wins with an identical value.
type DistanceMemo struct {
	lru *expirable.LRU[string, domain.DistanceResult]
}

// NewDistanceMemo creates a memo bounded to size entries, each living for ttl.
func NewDistanceMemo(size int, ttl time.Duration) *DistanceMemo {
	return &DistanceMemo{lru: expirable.NewLRU[string, domain.DistanceResult](size, nil, ttl)}
}

func (m *DistanceMemo) Get(key string) (domain.DistanceResult, bool) {
	return m.lru.Get(key)
}

func (m *DistanceMemo) Add(key string, v domain.DistanceResult) {
	m.lru.Add(key, v)
}

// Len reports the number of live entries.
func (m *DistanceMemo) Len() int {
	return m.lru.Len()
}

// Cache implements ports.CacheService in process memory. It is the cache driver
// for single-instance deployments and tests. Per-entry TTLs are capped by the
// LRU-wide ttl given at construction.
type Cache struct {
	lru *expirable.LRU[string, entry]
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewCache creates a cache bounded to size entries.
func NewCache(size int, maxTTL time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, entry](size, nil, maxTTL)}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, ports.ErrCacheMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttlSeconds > 0 {
		e.expiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	}
	c.lru.Add(key, e)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Ping always succeeds.
func (c *Cache) Ping(context.Context) error { return nil }
