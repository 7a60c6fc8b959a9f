// Package main is the entry point for the monitoring hub background worker.
//
// The worker runs the scheduled jobs that keep the read side fresh:
//   - cache refresh: rebuilds the cached record lists from storage
//   - narrative backfill: retries narrative generation for records saved
//     while the generator was unavailable
//   - daily snapshot: precomputes per-class and school-wide statistics
//     each morning before teachers open the dashboard
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pantau-kelas/monitoring-hub/config"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/external/narrative"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/persistence/postgres"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/persistence/redis"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/scheduler"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/scheduler/jobs"
	"github.com/pantau-kelas/monitoring-hub/pkg/timeutil"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting monitoring hub worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler is disabled, worker has nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// The worker migrates too, so it can run against a fresh database
	// without waiting for an API deploy.
	log.Info("checking database migrations...")
	if err := postgres.NewMigrator(dbConn).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS
	// ─────────────────────────────────────────────────────────────────────────
	var recordCache record.Cache
	var snapshotStore jobs.SnapshotStore
	var redisCache *redis.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, cache jobs disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			if cfg.Features.IsEnabled(config.FeatureCacheLists, nil) {
				recordCache = redis.NewRecordCache(redisCache)
			}
			snapshotStore = redis.NewStatisticsCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. NARRATIVE GENERATOR (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var generator record.NarrativeGenerator

	if !cfg.Narrative.Disabled && cfg.Narrative.APIKey != "" {
		ncfg := narrative.DefaultClientConfig(cfg.Narrative.BaseURL, cfg.Narrative.APIKey)
		ncfg.Logger = log
		if cfg.Narrative.Model != "" {
			ncfg.Model = cfg.Narrative.Model
		}
		if cfg.Narrative.RequestTimeout > 0 {
			ncfg.Timeout = cfg.Narrative.RequestTimeout
		}
		if cfg.Narrative.RequestsPerSecond > 0 {
			ncfg.RateLimiterConfig.RequestsPerSecond = cfg.Narrative.RequestsPerSecond
		}
		if cfg.Narrative.RateLimitBurst > 0 {
			ncfg.RateLimiterConfig.BurstSize = cfg.Narrative.RateLimitBurst
		}
		if cfg.Narrative.CircuitBreakerThreshold > 0 {
			ncfg.CircuitBreakerConfig.FailureThreshold = cfg.Narrative.CircuitBreakerThreshold
		}
		if cfg.Narrative.CircuitBreakerTimeout > 0 {
			ncfg.CircuitBreakerConfig.Timeout = cfg.Narrative.CircuitBreakerTimeout
		}
		if cfg.Narrative.MaxRetries > 0 {
			ncfg.RetryConfig.MaxRetries = cfg.Narrative.MaxRetries
		}
		generator = narrative.NewClient(ncfg)
		log.Info("narrative generator enabled", "model", ncfg.Model)
	} else {
		log.Info("narrative generation disabled, backfill will be a no-op")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	recordRepo := postgres.NewRecordRepository(dbConn)
	registry := postgres.NewRosterRegistry(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SCHEDULER AND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	tz := timeutil.JakartaTZ
	if cfg.App.Location != nil {
		tz = cfg.App.Location
	}

	schedCfg := scheduler.DefaultSchedulerConfig()
	schedCfg.Logger = log
	schedCfg.Timezone = tz
	sched := scheduler.NewScheduler(schedCfg)

	if recordCache != nil {
		refreshCfg := jobs.DefaultCacheRefreshConfig()
		if cfg.Scheduler.JobTimeout > 0 {
			refreshCfg.Timeout = cfg.Scheduler.JobTimeout
		}
		refreshJob := jobs.NewCacheRefreshJob(recordRepo, recordCache, log, refreshCfg)
		if err := sched.Register(refreshJob, scheduler.NewIntervalSchedule(cfg.Scheduler.CacheRefreshInterval)); err != nil {
			return fmt.Errorf("failed to register cache refresh job: %w", err)
		}
	} else {
		log.Warn("cache refresh job skipped: Redis unavailable")
	}

	backfillJob := jobs.NewNarrativeBackfillJob(
		recordRepo, generator, recordCache, log,
		jobs.DefaultNarrativeBackfillConfig(),
	)
	if err := sched.Register(backfillJob, scheduler.NewIntervalSchedule(cfg.Scheduler.NarrativeBackfillInterval)); err != nil {
		return fmt.Errorf("failed to register narrative backfill job: %w", err)
	}

	if snapshotStore != nil {
		snapshotSchedule, err := scheduler.DailyAt(cfg.Scheduler.DailySnapshotHour, cfg.Scheduler.DailySnapshotMinute)
		if err != nil {
			return fmt.Errorf("invalid daily snapshot time: %w", err)
		}
		snapshotJob := jobs.NewDailySnapshotJob(
			recordRepo, registry, snapshotStore, log,
			jobs.DefaultDailySnapshotConfig(),
		)
		if err := sched.Register(snapshotJob, snapshotSchedule); err != nil {
			return fmt.Errorf("failed to register daily snapshot job: %w", err)
		}
	} else {
		log.Warn("daily snapshot job skipped: Redis unavailable")
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		log.Info("stopping scheduler...")
		_ = sched.Stop()
	}()

	for _, info := range sched.ListJobs() {
		log.Info("job registered", "name", info.Name, "schedule", info.Schedule)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("monitoring hub worker is running", "timezone", tz.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger builds the slog logger shared by the scheduler and jobs.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
