package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	_ "github.com/ghuser/titleguard/docs/swagger"
	"github.com/ghuser/titleguard/pkg/app"
	"github.com/ghuser/titleguard/pkg/auth"
	"github.com/ghuser/titleguard/pkg/cache"
	"github.com/ghuser/titleguard/pkg/config"
	"github.com/ghuser/titleguard/pkg/database"
	"github.com/ghuser/titleguard/pkg/events"
	"github.com/ghuser/titleguard/pkg/httpx"
	"github.com/ghuser/titleguard/pkg/logger"
	"github.com/ghuser/titleguard/pkg/telemetry"
	"github.com/ghuser/titleguard/pkg/workflows"
	itemApi "github.com/ghuser/titleguard/services/item/application/api"
)

const shutdownGrace = 30 * time.Second

// @title					Title Guard API
// @version				1.0
// @description			Content item API that blocks saves of Component titles holding characters outside the allowed whitelist.
// @contact.name			API Support
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
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
		log.Error("api exited", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
	log.Info("api stopped")
}

// run wires the dependencies, serves until ctx is cancelled and then drains
// in-flight requests.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	defer telemetry.SentryFlush()

	a, health, cleanup, err := buildApplication(ctx, cfg, log)
	defer cleanup()
	if err != nil {
		return err
	}

	router := newRouter(a, health, metricsHandler)
	srv := httpx.NewServer(cfg.HTTPAddr, router, cfg.HandlerTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildApplication connects every backing service. cleanup releases whatever
// was opened and is safe to call when err is non-nil.
func buildApplication(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Application, httpx.HealthChecks, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(what string, err error) (*app.Application, httpx.HealthChecks, func(), error) {
		return nil, httpx.HealthChecks{}, cleanup, fmt.Errorf("%s: %w", what, err)
	}

	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log)
	if err != nil {
		return fail("database", err)
	}
	closers = append(closers, func() { _ = pool.Close() })

	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		return fail("event bus", err)
	}
	closers = append(closers, func() { _ = eventBus.Close() })
	if err := eventBus.StartForwarder(ctx); err != nil {
		return fail("event forwarder", err)
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return fail("redis", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	metrics, err := telemetry.NewTitleGuardMetrics()
	if err != nil {
		return fail("metrics", err)
	}

	health := httpx.HealthChecks{Database: pool, Redis: redisClient, EventBus: eventBus}

	var temporalClient *workflows.TemporalClient
	if cfg.TemporalEnabled {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			return fail("temporal", err)
		}
		closers = append(closers, temporalClient.Close)
		health.Temporal = temporalClient
	}

	sessionStore := auth.NewSessionStore(
		redisClient.Client(),
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
		cfg.SessionTTL,
	)

	return &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		Metrics:        metrics,
		TemporalClient: temporalClient,
		SessionStore:   sessionStore,
	}, health, cleanup, nil
}

func newRouter(a *app.Application, health httpx.HealthChecks, metrics http.Handler) http.Handler {
	cfg, log := a.Config, a.Logger

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			BodyLimitBytes:     cfg.BodyLimitBytes,
			HandlerTimeout:     cfg.HandlerTimeout,
		},
		httpx.Middlewares{
			Recovery: logger.Recovery(log),
			Sentry:   telemetry.SentryMiddleware(),
			Tracing:  otelhttp.NewMiddleware(cfg.ServiceName),
			Logging:  logger.Middleware(log),
		},
	)

	r.Get("/health", httpx.HealthHandler(health))
	r.Method(http.MethodGet, "/metrics", metrics)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		if cfg.RequireAuth {
			r.Use(auth.RequireAuth(a.SessionStore, log))
		} else {
			log.Warn("session auth disabled; trusting org header", "header", httpx.OrgIDHeader)
			r.Use(auth.OrgIDFromHeader(log))
		}
		itemApi.ItemRoutes(r, a)
	})
	return r
}
