package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// NARRATIVE BACKFILL JOB
// ══════════════════════════════════════════════════════════════════════════════

// NarrativeBackfillJob attaches narratives to records that were saved
// without one.
//
// A record ends up without a narrative when the generator was rate
// limited, the circuit breaker was open, or the request simply failed;
// the save itself never waits for prose. This job picks those records up
// later and retries, oldest first, so teachers eventually get a summary
// for every session without the save path ever blocking on the generator.
type NarrativeBackfillJob struct {
	recordRepo record.Repository
	generator  record.NarrativeGenerator
	cache      record.Cache
	logger     *slog.Logger

	config NarrativeBackfillConfig

	lastRunStats atomic.Value // *NarrativeBackfillStats
}

// NarrativeBackfillConfig contains configuration for the backfill job.
type NarrativeBackfillConfig struct {
	// MaxPerRun caps how many narratives one run may generate. The
	// generator is rate limited, so a large backlog drains over several
	// runs instead of exhausting the quota at once.
	MaxPerRun int

	// MinRecordAge skips records saved very recently. The save path may
	// still be attaching its own narrative for those.
	MinRecordAge time.Duration

	// FailureBudget aborts the run after this many consecutive
	// generation failures. The circuit breaker is almost certainly open
	// at that point and further attempts only burn the retry window.
	FailureBudget int

	// Mode is the narrative horizon requested for backfilled records.
	Mode record.NarrativeMode

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultNarrativeBackfillConfig returns sensible defaults.
func DefaultNarrativeBackfillConfig() NarrativeBackfillConfig {
	return NarrativeBackfillConfig{
		MaxPerRun:     10,
		MinRecordAge:  10 * time.Minute,
		FailureBudget: 3,
		Mode:          record.NarrativeDaily,
		Timeout:       5 * time.Minute,
	}
}

// NarrativeBackfillStats contains statistics from a backfill run.
type NarrativeBackfillStats struct {
	StartedAt     time.Time
	CompletedAt   time.Time
	Duration      time.Duration
	MissingFound  int
	Attached      int
	Failed        int
	SkippedTooNew int
	AbortedEarly  bool
	Errors        []error
}

// NewNarrativeBackfillJob creates a new narrative backfill job.
func NewNarrativeBackfillJob(
	recordRepo record.Repository,
	generator record.NarrativeGenerator,
	cache record.Cache,
	logger *slog.Logger,
	config NarrativeBackfillConfig,
) *NarrativeBackfillJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxPerRun <= 0 {
		config.MaxPerRun = 10
	}
	if config.FailureBudget <= 0 {
		config.FailureBudget = 3
	}
	if !config.Mode.IsValid() {
		config.Mode = record.NarrativeDaily
	}

	return &NarrativeBackfillJob{
		recordRepo: recordRepo,
		generator:  generator,
		cache:      cache,
		logger:     logger,
		config:     config,
	}
}

// Name returns the job name.
func (j *NarrativeBackfillJob) Name() string {
	return "narrative_backfill"
}

// Description returns a human-readable description.
func (j *NarrativeBackfillJob) Description() string {
	return "Retries narrative generation for records saved without one"
}

// Run executes the backfill job.
func (j *NarrativeBackfillJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &NarrativeBackfillStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	if j.generator == nil {
		j.logger.Info("narrative backfill skipped, no generator configured")
		return nil
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	candidates, err := j.findMissing(ctx, stats)
	if err != nil {
		return fmt.Errorf("failed to find records without narrative: %w", err)
	}

	stats.MissingFound = len(candidates)
	if len(candidates) == 0 {
		j.finish(stats, startedAt)
		return nil
	}

	j.logger.Info("backfilling narratives",
		"missing", stats.MissingFound,
		"max_per_run", j.config.MaxPerRun,
	)

	j.backfill(ctx, candidates, stats)

	// Cached lists embed the narrative text, drop them after any write.
	if stats.Attached > 0 && j.cache != nil {
		if err := j.cache.Invalidate(ctx); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Warn("failed to invalidate record cache", "error", err)
		}
	}

	j.finish(stats, startedAt)
	return nil
}

// findMissing returns records without a narrative, oldest first, capped
// at MaxPerRun.
func (j *NarrativeBackfillJob) findMissing(ctx context.Context, stats *NarrativeBackfillStats) ([]*record.DailyRecord, error) {
	records, err := j.recordRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-j.config.MinRecordAge)
	missing := make([]*record.DailyRecord, 0)
	for _, rec := range records {
		if rec.AIAnalysis != "" {
			continue
		}
		if rec.CreatedAt.After(cutoff) {
			stats.SkippedTooNew++
			continue
		}
		missing = append(missing, rec)
	}

	sort.Slice(missing, func(a, b int) bool {
		return missing[a].CreatedAt.Before(missing[b].CreatedAt)
	})

	if len(missing) > j.config.MaxPerRun {
		missing = missing[:j.config.MaxPerRun]
	}
	return missing, nil
}

// backfill generates and saves narratives sequentially. The generator
// already paces itself; parallel calls would just queue on its limiter.
func (j *NarrativeBackfillJob) backfill(ctx context.Context, candidates []*record.DailyRecord, stats *NarrativeBackfillStats) {
	consecutiveFailures := 0

	for _, rec := range candidates {
		select {
		case <-ctx.Done():
			stats.AbortedEarly = true
			return
		default:
		}

		text, err := j.generator.Generate(ctx, record.NarrativeRequest{
			Record: rec,
			Mode:   j.config.Mode,
		})
		if err != nil {
			stats.Failed++
			stats.Errors = append(stats.Errors, err)
			consecutiveFailures++
			j.logger.Warn("narrative generation failed",
				"record_id", rec.ID,
				"class", rec.ClassID,
				"error", err,
			)
			if consecutiveFailures >= j.config.FailureBudget {
				stats.AbortedEarly = true
				j.logger.Warn("aborting backfill run, generator keeps failing",
					"consecutive_failures", consecutiveFailures,
				)
				return
			}
			continue
		}
		consecutiveFailures = 0

		rec.AttachAnalysis(text)
		if err := j.recordRepo.Save(ctx, rec); err != nil {
			stats.Failed++
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to save backfilled narrative",
				"record_id", rec.ID,
				"error", err,
			)
			continue
		}

		stats.Attached++
	}
}

func (j *NarrativeBackfillJob) finish(stats *NarrativeBackfillStats, startedAt time.Time) {
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("narrative_backfill job completed",
		"duration", stats.Duration.String(),
		"missing", stats.MissingFound,
		"attached", stats.Attached,
		"failed", stats.Failed,
		"aborted_early", stats.AbortedEarly,
	)
}

// LastRunStats returns statistics from the last backfill run.
func (j *NarrativeBackfillJob) LastRunStats() *NarrativeBackfillStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*NarrativeBackfillStats)
}
