// Package database owns the *sql.DB handle shared by repositories, the event
// bus and the migrator, and provides the per-operation transaction helper.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/logger"
)

// Dialect identifies the SQL flavour behind a Database.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Database wraps *sql.DB with the dialect it speaks.
type Database struct {
	db      *sql.DB
	dialect Dialect
	log     logger.Logger
}

// NewPool opens a pgx-backed connection pool against url and verifies it with
// a ping bounded by a 5 s deadline.
func NewPool(ctx context.Context, url string, log logger.Logger) (*Database, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return finish(ctx, db, DialectPostgres, log)
}

// NewSQLite opens (creating if needed) the SQLite file at path. WAL mode and a
// busy timeout are set in the DSN so every pooled connection gets them.
func NewSQLite(ctx context.Context, path string, log logger.Logger) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite serialises writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	return finish(ctx, db, DialectSQLite, log)
}

func finish(ctx context.Context, db *sql.DB, dialect Dialect, log logger.Logger) (*Database, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return &Database{db: db, dialect: dialect, log: log}, nil
}

// DB returns the underlying *sql.DB for non-transactional reads.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Dialect reports which SQL flavour the database speaks.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise (including on panic, which is re-raised).
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.log.ErrorContext(ctx, "rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping: %w", d.dialect, err)
	}
	return nil
}

// Close releases every pooled connection.
func (d *Database) Close() {
	if err := d.db.Close(); err != nil {
		d.log.Error("database close failed", "error", err)
	}
}

// Open connects to the backend selected by cfg.StoreBackend. The memory
// backend has no database, so Open returns (nil, nil) for it.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Database, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return nil, nil
	case config.BackendPostgres:
		return NewPool(ctx, cfg.DatabaseURL, log)
	case config.BackendSQLite:
		return NewSQLite(ctx, cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
