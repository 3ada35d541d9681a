package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"printhub/console/internal/backend"
	"printhub/console/internal/cache"
	"printhub/console/internal/config"
	"printhub/console/internal/database"
	"printhub/console/internal/fleet"
	"printhub/console/internal/handlers"
	"printhub/console/internal/jobs"
	"printhub/console/internal/log"
	"printhub/console/internal/notify"
	"printhub/console/internal/repository"
	"printhub/console/internal/server"
	"printhub/console/internal/session"
	"printhub/console/internal/storage"
	"printhub/console/internal/views"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)
	ctx := context.Background()

	client, err := backend.NewClient(cfg.Backend)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid backend configuration")
	}

	checks := make(map[string]handlers.HealthCheck)

	var redisClient *redis.Client
	var store session.Store = session.NewMemoryStore()
	if cfg.RedisEnabled() {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		store = session.NewRedisStore(redisClient)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logger.Warn().Msg("redis not configured, sessions are kept in memory")
	}

	var dbPool *pgxpool.Pool
	var history notify.History
	if cfg.PostgresEnabled() {
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		alerts := repository.NewAlertRepository(dbPool)
		if err := alerts.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("alert schema")
		}
		history = alerts
		checks["database"] = dbPool.Ping
	} else if !cfg.RedisEnabled() {
		history = notify.NewMemoryHistory()
	}

	var archiver fleet.Archiver
	if cfg.ArchiveEnabled() {
		archive, err := storage.NewSnapshotArchive(cfg.Archive)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init snapshot archive")
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure snapshot bucket failed")
		}
		archiver = archive
	}

	dispatchOpts := notify.DispatcherOptions{
		Hub:     notify.NewHub(logger),
		Feed:    notify.NewFeed(cfg.Fleet.FeedSize),
		History: history,
		Log:     logger,
	}
	if redisClient != nil {
		dispatchOpts.Stream = notify.NewStreamPublisher(redisClient, cfg.Worker.Stream)
	}
	dispatcher := notify.NewDispatcher(dispatchOpts)

	monitor := fleet.NewMonitor(fleet.MonitorOptions{
		Service:   fleet.NewService(cfg.Backend.PageLimit, cfg.Fleet.StatusConcurrency, logger),
		Publisher: dispatcher,
		Archiver:  archiver,
		Threshold: cfg.Fleet.LowTonerThreshold,
		Log:       logger,
	})

	sessions := session.NewManager(store, cfg.Session, logger)
	scheduler := jobs.NewScheduler(logger)

	handlerSet := handlers.NewHandlerSet(handlers.Options{
		Config:     cfg,
		Log:        logger,
		Backend:    client,
		Sessions:   sessions,
		Monitor:    monitor,
		Scheduler:  scheduler,
		Dispatcher: dispatcher,
		History:    history,
		Checks:     checks,
	})
	sessions.OnEnd(handlerSet.Unmount)

	renderer, err := views.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("parse templates")
	}
	httpServer := server.NewHTTPServer(cfg, logger, sessions, renderer, handlerSet)

	scheduler.Start()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	cancelJobs := scheduler.Stop()
	cancelJobs()

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("console exited cleanly")
}
