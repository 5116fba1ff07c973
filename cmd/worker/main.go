package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/worker"

	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/events"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/telemetry"
	"github.com/ghuser/todoapp/pkg/workflows"
	todoServices "github.com/ghuser/todoapp/services/todo/application/services"
	todoEvents "github.com/ghuser/todoapp/services/todo/domain/events"
)

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

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	// The memory store lives inside the API process; a separate worker would see its own empty copy.
	if !cfg.Durable() {
		log.Error("worker requires a durable store backend", "backend", cfg.StoreBackend)
		os.Exit(1) //nolint:gocritic
	}

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer db.Close()
	log.Info("database connected", "backend", cfg.StoreBackend)

	a := &app.Application{Config: cfg, Db: db, Logger: log}

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		a.Redis = redisClient
		log.Info("redis connected")
	}

	if db.Dialect() == database.DialectPostgres {
		eventBus, err := events.NewEventBus(db, cfg, log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer eventBus.Close() //nolint:errcheck
		a.EventBus = eventBus
	}

	if cfg.TemporalHostPort != "" {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
		a.TemporalClient = temporalClient
	}

	if a.EventBus == nil && a.TemporalClient == nil {
		log.Error("nothing to run: event subscribers need the postgres backend and maintenance needs TEMPORAL_HOST_PORT")
		os.Exit(1) //nolint:gocritic
	}

	svcs := todoServices.New(a)

	if a.EventBus != nil {
		if err := registerSubscribers(ctx, a); err != nil {
			log.Error("failed to register subscribers", "error", err)
			os.Exit(1) //nolint:gocritic
		}
	}

	var maintenance worker.Worker
	scheduleCtx, cancelSchedule := context.WithCancel(ctx)
	if a.TemporalClient != nil {
		maintenance = workflows.NewMaintenanceWorker(a.TemporalClient.Client, svcs.Todo)
		if err := maintenance.Start(); err != nil {
			log.Error("failed to start temporal worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		log.Info("temporal worker started", "task_queue", workflows.MaintenanceTaskQueue)

		if cfg.ClearCompletedInterval > 0 {
			go runMaintenanceSchedule(scheduleCtx, a, cfg.ClearCompletedInterval)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancelSchedule()
	if maintenance != nil {
		maintenance.Stop()
	}

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires one handler per todo topic.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	var invalidator listInvalidator
	if a.Redis != nil {
		invalidator = cache.NewTodoListCache(a.Redis)
	}

	for _, topic := range todoEvents.Topics {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handleTodoEvent(topic, a.Logger, invalidator))
		if err != nil {
			return err
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
	}

	a.Logger.Info("event subscribers registered", "topics", todoEvents.Topics)
	return nil
}

// runMaintenanceSchedule starts ClearCompletedWorkflow every interval until
// ctx is cancelled.
func runMaintenanceSchedule(ctx context.Context, a *app.Application, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.Logger.Info("clear-completed schedule running", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			a.Logger.Info("clear-completed schedule shutting down")
			return
		case <-ticker.C:
			runID, err := a.TemporalClient.StartClearCompleted(ctx)
			if err != nil {
				a.Logger.ErrorContext(ctx, "failed to start clear-completed workflow", "error", err)
				continue
			}
			a.Logger.InfoContext(ctx, "clear-completed workflow started", "run_id", runID)
		}
	}
}
