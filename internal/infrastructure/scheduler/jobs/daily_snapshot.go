package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/application/query"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/roster"
	"github.com/pantau-kelas/monitoring-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY SNAPSHOT JOB
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotScopeAll is the scope name of the school-wide snapshot.
const SnapshotScopeAll = "all"

// SnapshotStore persists computed statistics snapshots.
type SnapshotStore interface {
	// SaveSnapshot stores one snapshot under a scope (class name or
	// SnapshotScopeAll) and date.
	SaveSnapshot(ctx context.Context, scope, date string, snapshot any, ttl time.Duration) error
}

// DailySnapshotJob precomputes attendance and score statistics every
// morning before the monitoring session starts.
//
// The statistics endpoint aggregates on demand, which is fine for a
// single class but makes the school-wide dashboard scan every record.
// This job computes the rolling-window numbers once, per class and
// school-wide, and parks them in the cache so the morning briefing
// opens instantly.
type DailySnapshotJob struct {
	recordRepo record.Repository
	registry   roster.Registry
	store      SnapshotStore
	logger     *slog.Logger

	config DailySnapshotConfig

	lastRunStats atomic.Value // *DailySnapshotStats
}

// DailySnapshotConfig contains configuration for the snapshot job.
type DailySnapshotConfig struct {
	// WindowDays is the size of the rolling window ending today (WIB).
	WindowDays int

	// TTL applied to stored snapshots. Long enough to survive until
	// the next morning's run plus a missed day.
	TTL time.Duration

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultDailySnapshotConfig returns sensible defaults.
func DefaultDailySnapshotConfig() DailySnapshotConfig {
	return DailySnapshotConfig{
		WindowDays: 7,
		TTL:        48 * time.Hour,
		Timeout:    2 * time.Minute,
	}
}

// DailySnapshotStats contains statistics from a snapshot run.
type DailySnapshotStats struct {
	StartedAt       time.Time
	CompletedAt     time.Time
	Duration        time.Duration
	WindowFrom      string
	WindowTo        string
	RecordsInWindow int
	ClassesStored   int
	ClassesSkipped  int
	Errors          []error
}

// NewDailySnapshotJob creates a new daily snapshot job.
func NewDailySnapshotJob(
	recordRepo record.Repository,
	registry roster.Registry,
	store SnapshotStore,
	logger *slog.Logger,
	config DailySnapshotConfig,
) *DailySnapshotJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.WindowDays <= 0 {
		config.WindowDays = 7
	}
	if config.TTL <= 0 {
		config.TTL = 48 * time.Hour
	}

	return &DailySnapshotJob{
		recordRepo: recordRepo,
		registry:   registry,
		store:      store,
		logger:     logger,
		config:     config,
	}
}

// Name returns the job name.
func (j *DailySnapshotJob) Name() string {
	return "daily_snapshot"
}

// Description returns a human-readable description.
func (j *DailySnapshotJob) Description() string {
	return "Precomputes per-class and school-wide statistics snapshots"
}

// Run executes the snapshot job.
func (j *DailySnapshotJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	today := timeutil.Now()
	stats := &DailySnapshotStats{
		StartedAt:  startedAt,
		WindowFrom: timeutil.FormatDateStr(today.AddDate(0, 0, -(j.config.WindowDays - 1))),
		WindowTo:   timeutil.FormatDateStr(today),
		Errors:     make([]error, 0),
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

	windowed := filterWindow(records, stats.WindowFrom, stats.WindowTo)
	stats.RecordsInWindow = len(windowed)

	// School-wide snapshot first, it is the one the dashboard opens with.
	overall := query.ComputeStatistics(windowed)
	if err := j.store.SaveSnapshot(ctx, SnapshotScopeAll, stats.WindowTo, overall, j.config.TTL); err != nil {
		return fmt.Errorf("failed to store school-wide snapshot: %w", err)
	}

	j.snapshotClasses(ctx, windowed, stats)

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("daily_snapshot job completed",
		"duration", stats.Duration.String(),
		"window_from", stats.WindowFrom,
		"window_to", stats.WindowTo,
		"records", stats.RecordsInWindow,
		"classes_stored", stats.ClassesStored,
		"classes_skipped", stats.ClassesSkipped,
	)

	return nil
}

// snapshotClasses stores one snapshot per registered class. Classes with
// no records in the window are skipped rather than stored as zeros, so a
// missing key distinguishes "no data" from "all absent".
func (j *DailySnapshotJob) snapshotClasses(ctx context.Context, windowed []*record.DailyRecord, stats *DailySnapshotStats) {
	classes, err := j.registry.ListClasses(ctx)
	if err != nil {
		stats.Errors = append(stats.Errors, err)
		j.logger.Warn("failed to list classes for snapshots", "error", err)
		return
	}

	byClass := make(map[string][]*record.DailyRecord)
	for _, rec := range windowed {
		byClass[rec.ClassID] = append(byClass[rec.ClassID], rec)
	}

	for _, class := range classes {
		select {
		case <-ctx.Done():
			return
		default:
		}

		classRecords := byClass[class.Name]
		if len(classRecords) == 0 {
			stats.ClassesSkipped++
			continue
		}

		snapshot := query.ComputeStatistics(classRecords)
		if err := j.store.SaveSnapshot(ctx, class.Name, stats.WindowTo, snapshot, j.config.TTL); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Warn("failed to store class snapshot",
				"class", class.Name,
				"error", err,
			)
			continue
		}
		stats.ClassesStored++
	}
}

// filterWindow keeps records whose date falls within [from, to]. The
// fixed YYYY-MM-DD layout makes string comparison safe.
func filterWindow(records []*record.DailyRecord, from, to string) []*record.DailyRecord {
	out := make([]*record.DailyRecord, 0, len(records))
	for _, rec := range records {
		d := rec.Date.String()
		if d < from || d > to {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// LastRunStats returns statistics from the last snapshot run.
func (j *DailySnapshotJob) LastRunStats() *DailySnapshotStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*DailySnapshotStats)
}
