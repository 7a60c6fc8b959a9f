// Package redis implements Redis caching and pub/sub for the monitoring hub.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
	"github.com/pantau-kelas/monitoring-hub/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD CACHE
// Implements record.Cache on top of the general-purpose Cache client.
// Collections are stored whole as JSON arrays; invalidation drops every
// record key at once so a write can never leave a stale per-class list.
//
// A circuit breaker guards every Redis call. When Redis flaps, the
// breaker opens and reads report a miss immediately instead of holding
// each request for a connection timeout; the read path then falls
// through to Postgres.
// ══════════════════════════════════════════════════════════════════════════════

// RecordCache caches record collections for the list views.
type RecordCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
}

// NewRecordCache creates a new RecordCache.
func NewRecordCache(cache *Cache) *RecordCache {
	return &RecordCache{
		cache:   cache,
		breaker: circuitbreaker.CacheBreaker(nil),
	}
}

// GetAll retrieves the cached full record list.
func (c *RecordCache) GetAll(ctx context.Context) ([]*record.DailyRecord, error) {
	return c.get(ctx, RecordListKey(""))
}

// SetAll caches the full record list.
func (c *RecordCache) SetAll(ctx context.Context, records []*record.DailyRecord, ttl time.Duration) error {
	return c.set(ctx, RecordListKey(""), records, ttl)
}

// GetByClass retrieves the cached per-class list.
func (c *RecordCache) GetByClass(ctx context.Context, classID string) ([]*record.DailyRecord, error) {
	return c.get(ctx, RecordListKey(classID))
}

// SetByClass caches the per-class list.
func (c *RecordCache) SetByClass(ctx context.Context, classID string, records []*record.DailyRecord, ttl time.Duration) error {
	return c.set(ctx, RecordListKey(classID), records, ttl)
}

// Invalidate drops all cached record collections. Unlike reads and
// writes, an invalidation blocked by an open breaker is reported to the
// caller: a skipped drop can serve stale lists until the TTL expires.
func (c *RecordCache) Invalidate(ctx context.Context) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.DeleteByPattern(ctx, PrefixRecords+"*")
	})
}

func (c *RecordCache) get(ctx context.Context, key string) ([]*record.DailyRecord, error) {
	var records []*record.DailyRecord
	var miss bool

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		if err := c.cache.Get(ctx, key, &records); err != nil {
			if errors.Is(err, ErrCacheMiss) {
				// A miss is a healthy Redis response, not a failure.
				miss = true
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		if breakerTripped(err) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if miss {
		return nil, shared.ErrNotFound
	}
	return records, nil
}

func (c *RecordCache) set(ctx context.Context, key string, records []*record.DailyRecord, ttl time.Duration) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Set(ctx, key, records, ttl)
	})
	if breakerTripped(err) {
		// Cache writes are best-effort while Redis recovers.
		return nil
	}
	return err
}

func breakerTripped(err error) bool {
	return errors.Is(err, circuitbreaker.ErrCircuitOpen) ||
		errors.Is(err, circuitbreaker.ErrTooManyRequests)
}
