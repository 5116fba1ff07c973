package migrator

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/ghuser/todoapp/pkg/database"
)

// goose keeps its base FS and dialect in package globals.
var mu sync.Mutex

// RunMigrations runs all pending goose migrations from files against db,
// picking the goose dialect from the database's own dialect.
func RunMigrations(db *database.Database, files fs.FS) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(files)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(gooseDialect(db.Dialect())); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db.DB(), "."); err != nil {
		return fmt.Errorf("failed to up migrations: %w", err)
	}
	return nil
}

func gooseDialect(d database.Dialect) string {
	if d == database.DialectSQLite {
		return "sqlite3"
	}
	return "postgres"
}
