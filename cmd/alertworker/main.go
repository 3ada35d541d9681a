package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"printhub/console/internal/cache"
	"printhub/console/internal/config"
	"printhub/console/internal/database"
	"printhub/console/internal/jobs"
	"printhub/console/internal/log"
	"printhub/console/internal/queue"
	"printhub/console/internal/repository"
	"printhub/console/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment).With().Str("component", "alertworker").Logger()

	if !cfg.RedisEnabled() || !cfg.PostgresEnabled() {
		logger.Fatal().Msg("alert worker needs redis.addr and postgres.dsn")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	alerts := repository.NewAlertRepository(pool)
	if err := alerts.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("alert schema")
	}

	scheduler := jobs.NewScheduler(logger)
	if cfg.Worker.Retention > 0 {
		err := scheduler.Schedule(cfg.Worker.PruneSchedule, "prune-alerts", func() {
			pruneCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			removed, err := alerts.PruneBefore(pruneCtx, time.Now().Add(-cfg.Worker.Retention))
			if err != nil {
				logger.Error().Err(err).Msg("prune alerts failed")
				return
			}
			logger.Info().Int64("removed", removed).Msg("old alerts pruned")
		})
		if err != nil {
			logger.Fatal().Err(err).Str("spec", cfg.Worker.PruneSchedule).Msg("invalid prune schedule")
		}
	}
	scheduler.Start()

	processor := tasks.NewProcessor(alerts, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)
	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Fatal().Err(err).Msg("create consumer group failed")
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	cancel := scheduler.Stop()
	cancel()
	time.Sleep(500 * time.Millisecond)
}
