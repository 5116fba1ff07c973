// Package todo embeds the goose migrations for the todos table, one
// directory per SQL dialect.
package todo

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/ghuser/todoapp/pkg/database"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// FS returns the migration set for the given dialect, rooted so goose can
// read it from ".".
func FS(d database.Dialect) (fs.FS, error) {
	switch d {
	case database.DialectPostgres, database.DialectSQLite:
		return fs.Sub(files, string(d))
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", d)
	}
}
