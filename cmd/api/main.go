// Package main is the entry point for the monitoring hub API server.
//
// The API serves the daily classroom monitoring records: teachers save
// attendance and subject scores, read them back per class or per date,
// pull aggregated statistics, and download the Word export. Admin-only
// endpoints cover record deletion, class registration and bulk synthesis.
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
	"github.com/pantau-kelas/monitoring-hub/internal/application/command"
	"github.com/pantau-kelas/monitoring-hub/internal/application/eventhandler"
	"github.com/pantau-kelas/monitoring-hub/internal/application/query"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/external/narrative"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/messaging"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/persistence/postgres"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/persistence/projections"
	"github.com/pantau-kelas/monitoring-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/pantau-kelas/monitoring-hub/internal/interface/http"
	"github.com/pantau-kelas/monitoring-hub/internal/interface/http/handlers"
	"github.com/pantau-kelas/monitoring-hub/pkg/logger"
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
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting monitoring hub API",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

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

	log.Info("running database migrations...")
	if err := postgres.NewMigrator(dbConn).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional record cache)
	// ─────────────────────────────────────────────────────────────────────────
	// recordCache stays a nil interface when Redis is off, so every read
	// path falls through to Postgres.
	var recordCache record.Cache
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
		if cfg.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		}

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, record caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			if cfg.Features.IsEnabled(config.FeatureCacheLists, nil) {
				recordCache = redis.NewRecordCache(redisCache)
			}
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. NARRATIVE GENERATOR (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var generator record.NarrativeGenerator
	var narClient *narrative.Client

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
		if cfg.Narrative.CircuitBreakerHalfOpenMax > 0 {
			ncfg.CircuitBreakerConfig.HalfOpenMaxRetries = cfg.Narrative.CircuitBreakerHalfOpenMax
		}
		if cfg.Narrative.MaxRetries > 0 {
			ncfg.RetryConfig.MaxRetries = cfg.Narrative.MaxRetries
		}
		if cfg.Narrative.RetryBaseDelay > 0 {
			ncfg.RetryConfig.InitialBackoff = cfg.Narrative.RetryBaseDelay
		}
		if cfg.Narrative.RetryMaxDelay > 0 {
			ncfg.RetryConfig.MaxBackoff = cfg.Narrative.RetryMaxDelay
		}
		ncfg.Debug = cfg.App.Debug

		narClient = narrative.NewClient(ncfg)
		generator = narClient
		log.Info("narrative generator enabled", "model", ncfg.Model)
	} else {
		log.Info("narrative generation disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	recordRepo := postgres.NewRecordRepository(dbConn)
	registry := postgres.NewRosterRegistry(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS AND DISPATCHER
	// ─────────────────────────────────────────────────────────────────────────
	// With Redis present, events also travel over pub/sub so every API
	// instance invalidates its caches when any instance writes.
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log

	var eventBus shared.EventBus
	var closeBus func() error

	if redisCache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Cache:          redisCache,
			LocalBusConfig: busCfg,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create event bus: %w", err)
		}
		eventBus = redisBus
		closeBus = redisBus.Close
	} else {
		memBus := messaging.NewInMemoryEventBus(busCfg)
		eventBus = memBus
		closeBus = memBus.Close
	}
	defer func() {
		log.Info("closing event bus...")
		_ = closeBus()
	}()

	savedCfg := eventhandler.DefaultRecordSavedConfig()
	savedCfg.NarrativeGate = func(className string) bool {
		return cfg.Features.IsEnabled(config.FeatureRecordNarrative, &config.FeatureContext{ClassName: className})
	}
	onSaved := eventhandler.NewOnRecordSavedHandler(
		recordRepo, recordCache, generator, eventBus, log, savedCfg,
	)
	onDeleted := eventhandler.NewOnRecordDeletedHandler(recordCache, log)

	dispatcher := messaging.NewDispatcher(messaging.DefaultDispatcherConfig(eventBus))
	if err := dispatcher.Register(shared.EventRecordSaved, "on_record_saved", onSaved.Handle); err != nil {
		return fmt.Errorf("failed to register record.saved handler: %w", err)
	}
	if err := dispatcher.Register(shared.EventRecordDeleted, "on_record_deleted", onDeleted.Handle); err != nil {
		return fmt.Errorf("failed to register record.deleted handler: %w", err)
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}
	defer func() {
		log.Info("stopping event dispatcher...")
		_ = dispatcher.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	// Handlers left nil by a disabled feature flag surface as 501 on
	// their routes.
	saveHandler := command.NewSaveRecordHandler(recordRepo, registry, eventBus)
	deleteHandler := command.NewDeleteRecordHandler(recordRepo, eventBus)

	var registerClassHandler *command.RegisterClassHandler
	if cfg.Features.IsEnabled(config.FeatureRosterCustomClasses, nil) {
		registerClassHandler = command.NewRegisterClassHandler(registry, eventBus)
	}

	var synthesizeHandler *command.SynthesizeRecordsHandler
	if cfg.Features.IsEnabled(config.FeatureSynthesisBulk, nil) {
		synthesizeHandler = command.NewSynthesizeRecordsHandler(
			recordRepo, registry, eventBus,
			command.DefaultSynthesizeRecordsHandlerConfig(),
		)
	}

	listHandler := query.NewListRecordsHandler(recordRepo, recordCache)
	getHandler := query.NewGetRecordHandler(recordRepo)
	statsHandler := query.NewGetStatisticsHandler(recordRepo)

	var exportHandler *query.BuildExportHandler
	if cfg.Features.IsEnabled(config.FeatureRecordExport, nil) {
		exportHandler = query.NewBuildExportHandler(recordRepo)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		health.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}
	if narClient != nil {
		health.AddCheck("narrative", handlers.NewNarrativeCheck(func() bool {
			return narClient.Status().CircuitBreaker.State == narrative.CircuitOpen
		}))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout
	serverCfg.IdleTimeout = cfg.Server.IdleTimeout
	serverCfg.EnableCORS = cfg.Server.EnableCORS
	serverCfg.AllowedOrigins = cfg.Server.AllowedOrigins
	serverCfg.RateLimitPerMinute = cfg.Server.RateLimitPerMinute
	serverCfg.AdminPasswordHash = cfg.Server.AdminPasswordHash

	httpLog := logger.New(logger.Options{
		Level: logger.ParseLevel(cfg.Observability.LogLevel),
	})

	server := httpapi.NewServer(serverCfg, httpapi.Dependencies{
		SaveRecordHandler:    saveHandler,
		DeleteRecordHandler:  deleteHandler,
		RegisterClassHandler: registerClassHandler,
		SynthesizeHandler:    synthesizeHandler,
		ListRecordsHandler:   listHandler,
		GetRecordHandler:     getHandler,
		GetStatisticsHandler: statsHandler,
		BuildExportHandler:   exportHandler,
		ExportView:           projections.NewExportView(),
		Registry:             registry,
		Logger:               httpLog,
		HealthChecker:        health,
	})

	errCh := server.StartAsync()
	log.Info("monitoring hub API is running", "address", serverCfg.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger builds the slog logger used across the infrastructure layer.
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
