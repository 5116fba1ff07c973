package main

import (
	"context"
	"log/slog"
	"os"

	todomigrations "github.com/ghuser/todoapp/migrations/todo"
	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/migrator"
)

// migrate applies pending todo migrations to the configured store and exits.
// The API also migrates on startup; this is for running ahead of a deploy.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	if !cfg.Durable() {
		log.Info("memory backend has no schema; nothing to migrate")
		return
	}

	db, err := database.Open(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	files, err := todomigrations.FS(db.Dialect())
	if err != nil {
		log.Error("failed to load migrations", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	if err := migrator.RunMigrations(db, files); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("migrations applied", "backend", cfg.StoreBackend)
}
