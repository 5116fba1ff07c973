package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/events"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to services.New and the route constructors during server initialization.
//
// Optional dependencies are nil when not configured:
//   - Db: nil for the memory store backend.
//   - EventBus: postgres backend only.
//   - Redis: only when REDIS_URL is set.
//   - TemporalClient: only when TEMPORAL_HOST_PORT is set.
//   - SessionStore: nil in the worker process.
//
// Logging: app.Logger is backed by a trace-aware handler, so use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "todo created", "todo_id", id)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
	SessionStore   sessions.Store
}
