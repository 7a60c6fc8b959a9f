package redis

import (
	"context"
	"errors"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS CACHE
// Stores the precomputed statistics snapshots written by the daily
// snapshot job. Snapshots are keyed by window end date and scope (class
// name or "all") and expire on their own; nothing invalidates them.
// ══════════════════════════════════════════════════════════════════════════════

// StatisticsCache stores statistics snapshots.
type StatisticsCache struct {
	cache *Cache
}

// NewStatisticsCache creates a new StatisticsCache.
func NewStatisticsCache(cache *Cache) *StatisticsCache {
	return &StatisticsCache{cache: cache}
}

// SaveSnapshot stores one snapshot under a scope and date.
func (c *StatisticsCache) SaveSnapshot(ctx context.Context, scope, date string, snapshot any, ttl time.Duration) error {
	return c.cache.Set(ctx, StatisticsKey(scope, date), snapshot, ttl)
}

// GetSnapshot loads a stored snapshot into dest.
// Returns shared.ErrNotFound when no snapshot exists for the scope and date.
func (c *StatisticsCache) GetSnapshot(ctx context.Context, scope, date string, dest any) error {
	if err := c.cache.Get(ctx, StatisticsKey(scope, date), dest); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}
