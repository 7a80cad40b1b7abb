package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/titleguard/pkg/cache"
	"github.com/ghuser/titleguard/pkg/config"
	"github.com/ghuser/titleguard/pkg/database"
	"github.com/ghuser/titleguard/pkg/events"
	"github.com/ghuser/titleguard/pkg/logger"
	"github.com/ghuser/titleguard/pkg/telemetry"
	"github.com/ghuser/titleguard/pkg/workflows"
	"github.com/ghuser/titleguard/services/item/application/subscribers"
	itemWorkflows "github.com/ghuser/titleguard/services/item/application/workflows"
	"github.com/ghuser/titleguard/services/item/infrastructure/persistence/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker exited", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
	log.Info("worker stopped")
}

// run consumes item events and, when enabled, hosts the title audit worker
// until ctx is cancelled. Closing the event bus waits for in-flight handlers.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close() //nolint:errcheck

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close() //nolint:errcheck

	if cfg.TemporalEnabled {
		stopAudit, err := startAuditWorker(ctx, cfg, log, postgres.NewItemRepository(pool, eventBus))
		if err != nil {
			return err
		}
		defer stopAudit()
	}

	itemCache := cache.NewItemCache(redisClient, cfg.ItemCacheTTL)
	if err := subscribers.Register(ctx, eventBus, subscribers.Handlers(itemCache, log), log); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutting down worker")
	return nil
}

func startAuditWorker(ctx context.Context, cfg *config.Config, log logger.Logger, repo *postgres.ItemRepository) (func(), error) {
	tc, err := workflows.NewTemporalClient(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("temporal: %w", err)
	}
	w := tc.NewWorker(cfg.TitleAuditTaskQueue, itemWorkflows.Register(repo))
	if err := w.Start(); err != nil {
		tc.Close()
		return nil, fmt.Errorf("start audit worker: %w", err)
	}
	return func() {
		w.Stop()
		tc.Close()
	}, nil
}
