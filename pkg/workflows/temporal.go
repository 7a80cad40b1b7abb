// Package workflows connects to Temporal and hosts the workers that run
// long-lived jobs such as the title audit.
package workflows

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/titleguard/pkg/config"
	"github.com/ghuser/titleguard/pkg/logger"
)

const tracerName = "titleguard/temporal"

// TemporalClient is a connected Temporal client plus the settings its workers
// are created with.
type TemporalClient struct {
	Client              client.Client
	Namespace           string
	activityConcurrency int
	log                 logger.Logger
}

// NewTemporalClient dials cfg.TemporalHostPort with tracing propagated through
// workflow headers. Close it on shutdown.
func NewTemporalClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer(tracerName),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal tracing interceptor: %w", err)
	}

	c, err := client.DialContext(ctx, client.Options{
		HostPort:     cfg.TemporalHostPort,
		Namespace:    cfg.TemporalNamespace,
		Identity:     cfg.ServiceName,
		Logger:       newTemporalLogger(log),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal %s: %w", cfg.TemporalHostPort, err)
	}
	log.Info("temporal connected", "host_port", cfg.TemporalHostPort, "namespace", cfg.TemporalNamespace)

	return &TemporalClient{
		Client:              c,
		Namespace:           cfg.TemporalNamespace,
		activityConcurrency: cfg.TemporalActivityConcurrency,
		log:                 log,
	}, nil
}

// Ping checks the frontend service. Registered as a health check.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health: %w", err)
	}
	return nil
}

// Registrar adds one bounded context's workflows and activities to a worker.
type Registrar func(w worker.Registry)

// NewWorker returns an unstarted worker for taskQueue with every registrar
// applied.
func (tc *TemporalClient) NewWorker(taskQueue string, registrars ...Registrar) worker.Worker {
	w := worker.New(tc.Client, taskQueue, workerOptions(tc.activityConcurrency))
	for _, register := range registrars {
		register(w)
	}
	tc.log.Info("temporal worker ready", "task_queue", taskQueue)
	return w
}

func workerOptions(activityConcurrency int) worker.Options {
	var opts worker.Options
	if activityConcurrency > 0 {
		opts.MaxConcurrentActivityExecutionSize = activityConcurrency
	}
	return opts
}

func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}

// newTemporalLogger routes SDK logs through the service's slog handler, so
// they carry the same trace and request fields as everything else.
func newTemporalLogger(log logger.Logger) temporallog.Logger {
	return temporallog.NewStructuredLogger(log.ToSlog().With("component", "temporal"))
}
