package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/titleguard/pkg/cache"
	"github.com/ghuser/titleguard/pkg/config"
	"github.com/ghuser/titleguard/pkg/database"
	"github.com/ghuser/titleguard/pkg/events"
	"github.com/ghuser/titleguard/pkg/logger"
	"github.com/ghuser/titleguard/pkg/telemetry"
	"github.com/ghuser/titleguard/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to each service's route or worker registration during startup.
//
// Logging: app.Logger is backed by a trace-aware handler; use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "saving item", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	Metrics        *telemetry.TitleGuardMetrics
	TemporalClient *workflows.TemporalClient // nil unless TEMPORAL_ENABLED
	SessionStore   sessions.Store            // Redis-backed session store; nil in worker process
}

// MessageStore returns the message-center store sized from config.
func (a *Application) MessageStore() *cache.MessageStore {
	return cache.NewMessageStore(a.Redis, a.Config.MessageCenterLimit, a.Config.MessageCenterTTL)
}
