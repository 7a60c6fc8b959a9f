// Package jobs contains the scheduled background jobs of the monitoring hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// CACHE REFRESH JOB
// ══════════════════════════════════════════════════════════════════════════════

// CacheRefreshJob rebuilds the cached record collections from storage.
//
// Writes already invalidate the cache, so under normal operation the first
// read after a save repopulates it. This job keeps the lists warm between
// writes and repairs the cache after a missed invalidation (for example a
// Redis restart), so the dashboard list views stay fast on cold mornings.
type CacheRefreshJob struct {
	recordRepo record.Repository
	cache      record.Cache
	logger     *slog.Logger

	config CacheRefreshConfig

	lastRunStats atomic.Value // *CacheRefreshStats
}

// CacheRefreshConfig contains configuration for the cache refresh job.
type CacheRefreshConfig struct {
	// TTL applied to the refreshed collections.
	TTL time.Duration

	// RefreshPerClass also rebuilds the per-class lists, not just the
	// combined one.
	RefreshPerClass bool

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultCacheRefreshConfig returns sensible defaults.
func DefaultCacheRefreshConfig() CacheRefreshConfig {
	return CacheRefreshConfig{
		TTL:             5 * time.Minute,
		RefreshPerClass: true,
		Timeout:         time.Minute,
	}
}

// CacheRefreshStats contains statistics from a refresh run.
type CacheRefreshStats struct {
	StartedAt     time.Time
	CompletedAt   time.Time
	Duration      time.Duration
	RecordsCached int
	ClassesCached int
	Errors        []error
}

// NewCacheRefreshJob creates a new cache refresh job.
func NewCacheRefreshJob(
	recordRepo record.Repository,
	cache record.Cache,
	logger *slog.Logger,
	config CacheRefreshConfig,
) *CacheRefreshJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}

	return &CacheRefreshJob{
		recordRepo: recordRepo,
		cache:      cache,
		logger:     logger,
		config:     config,
	}
}

// Name returns the job name.
func (j *CacheRefreshJob) Name() string {
	return "cache_refresh"
}

// Description returns a human-readable description.
func (j *CacheRefreshJob) Description() string {
	return "Rebuilds the cached record lists from storage"
}

// Run executes the cache refresh job.
func (j *CacheRefreshJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &CacheRefreshStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	records, err := j.recordRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	record.SortByDateDesc(records)

	if err := j.cache.SetAll(ctx, records, j.config.TTL); err != nil {
		return fmt.Errorf("failed to cache record list: %w", err)
	}
	stats.RecordsCached = len(records)

	if j.config.RefreshPerClass {
		j.refreshPerClass(ctx, records, stats)
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("cache_refresh job completed",
		"duration", stats.Duration.String(),
		"records", stats.RecordsCached,
		"classes", stats.ClassesCached,
		"errors", len(stats.Errors),
	)

	return nil
}

// refreshPerClass rebuilds each class list from the already-loaded set.
// The input is sorted, and grouping preserves order, so the per-class
// lists come out newest-first as well.
func (j *CacheRefreshJob) refreshPerClass(ctx context.Context, records []*record.DailyRecord, stats *CacheRefreshStats) {
	byClass := make(map[string][]*record.DailyRecord)
	for _, rec := range records {
		byClass[rec.ClassID] = append(byClass[rec.ClassID], rec)
	}

	for className, classRecords := range byClass {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := j.cache.SetByClass(ctx, className, classRecords, j.config.TTL); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Warn("failed to cache class list",
				"class", className,
				"error", err,
			)
			continue
		}
		stats.ClassesCached++
	}
}

// LastRunStats returns statistics from the last refresh run.
func (j *CacheRefreshJob) LastRunStats() *CacheRefreshStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*CacheRefreshStats)
}
