package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	_ "github.com/ghuser/todoapp/docs/swagger"
	todomigrations "github.com/ghuser/todoapp/migrations/todo"
	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/events"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/migrator"
	"github.com/ghuser/todoapp/pkg/session"
	"github.com/ghuser/todoapp/pkg/telemetry"
	"github.com/ghuser/todoapp/pkg/workflows"
	todoApi "github.com/ghuser/todoapp/services/todo/application/api"
	todoServices "github.com/ghuser/todoapp/services/todo/application/services"
	todoWeb "github.com/ghuser/todoapp/services/todo/application/web"
)

// @title					Todo API
// @version				1.0
// @description			Todo list CRUD service. Every response uses the {success, ...} envelope.
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional; log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	a := &app.Application{Config: cfg, Logger: log}
	var checks httpx.HealthChecks

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	if db != nil {
		defer db.Close()
		a.Db = db
		checks.Database = db

		files, err := todomigrations.FS(db.Dialect())
		if err != nil {
			log.Error("failed to load migrations", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		if err := migrator.RunMigrations(db, files); err != nil {
			log.Error("failed to run migrations", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		log.Info("database ready", "backend", cfg.StoreBackend)
	} else {
		log.Warn("using in-memory store; todos are lost on restart")
	}

	if db != nil && db.Dialect() == database.DialectPostgres {
		eventBus, err := events.NewEventBusWithForwarder(db, cfg, log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer eventBus.Close() //nolint:errcheck

		if err := eventBus.StartForwarder(ctx); err != nil {
			log.Error("failed to start event forwarder", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		a.EventBus = eventBus
		checks.EventBus = eventBus
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		a.Redis = redisClient
		checks.Redis = redisClient
		log.Info("redis connected")
	}

	if cfg.TemporalHostPort != "" {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
		a.TemporalClient = temporalClient
		checks.Temporal = temporalClient
	}

	a.SessionStore = session.NewStore(
		a.Redis,
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
	)
	backend := "cookie"
	if a.Redis != nil {
		backend = "redis"
	}
	log.Info("session store initialized", "backend", backend)

	// One container for both the API and the page, so the memory backend is shared.
	svcs := todoServices.New(a)

	if err := telemetry.RegisterTodoGauges(otel.GetMeterProvider(), svcs.Todo); err != nil {
		log.Warn("failed to register todo gauges", "error", err)
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RequestsPerMinute:  cfg.RateLimitPerMinute,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, a, svcs)
	})
	todoWeb.Routes(r, a, svcs)

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api.
func registerRoutes(r chi.Router, a *app.Application, svcs *todoServices.Services) {
	todoApi.TodoRoutes(r, a, svcs)
}
