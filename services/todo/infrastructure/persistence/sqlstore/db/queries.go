// Package db holds the typed queries against the todos table. Statements are
// written once with $N placeholders and rebound to SQLite's ?N form, so the
// same Queries value serves both Postgres and SQLite.
package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ghuser/todoapp/pkg/database"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs the todo statements against a DBTX in a given dialect.
type Queries struct {
	db      DBTX
	dialect database.Dialect
}

// New returns Queries bound to db.
func New(db DBTX, dialect database.Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

// TodoRow is one row of the todos table.
type TodoRow struct {
	ID        int64
	Text      string
	Completed bool
	CreatedAt time.Time
}

const listTodos = `
SELECT id, text, completed, created_at
FROM todos
ORDER BY created_at DESC, id DESC`

// ListTodos returns every row, newest first.
func (q *Queries) ListTodos(ctx context.Context) ([]TodoRow, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(listTodos))
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []TodoRow
	for rows.Next() {
		r, err := q.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const insertTodo = `
INSERT INTO todos (text, completed, created_at)
VALUES ($1, $2, $3)
RETURNING id, text, completed, created_at`

// InsertTodoParams are the columns supplied on insert; id is generated.
type InsertTodoParams struct {
	Text      string
	Completed bool
	CreatedAt time.Time
}

// InsertTodo inserts a row and returns it as stored.
func (q *Queries) InsertTodo(ctx context.Context, arg InsertTodoParams) (TodoRow, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(insertTodo), arg.Text, arg.Completed, q.encodeTime(arg.CreatedAt))
	return q.scan(row)
}

const updateTodo = `
UPDATE todos
SET completed = COALESCE($2, completed),
    text      = COALESCE($3, text)
WHERE id = $1
RETURNING id, text, completed, created_at`

// UpdateTodoParams carries the optional new values; invalid Null* fields keep
// the stored value.
type UpdateTodoParams struct {
	ID        int64
	Completed sql.NullBool
	Text      sql.NullString
}

// UpdateTodo patches a row and returns it. Returns sql.ErrNoRows when the id
// does not exist.
func (q *Queries) UpdateTodo(ctx context.Context, arg UpdateTodoParams) (TodoRow, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(updateTodo), arg.ID, arg.Completed, arg.Text)
	return q.scan(row)
}

const deleteTodo = `DELETE FROM todos WHERE id = $1`

// DeleteTodo removes a row and reports how many rows went (0 or 1).
func (q *Queries) DeleteTodo(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.rebind(deleteTodo), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteCompletedTodos = `DELETE FROM todos WHERE completed = $1`

// DeleteCompletedTodos removes every completed row and reports the count.
func (q *Queries) DeleteCompletedTodos(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.rebind(deleteCompletedTodos), true)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row. SQLite stores created_at as unix nanoseconds.
func (q *Queries) scan(s scanner) (TodoRow, error) {
	var r TodoRow
	if q.dialect == database.DialectSQLite {
		var nanos int64
		if err := s.Scan(&r.ID, &r.Text, &r.Completed, &nanos); err != nil {
			return TodoRow{}, err
		}
		r.CreatedAt = time.Unix(0, nanos).UTC()
		return r, nil
	}

	if err := s.Scan(&r.ID, &r.Text, &r.Completed, &r.CreatedAt); err != nil {
		return TodoRow{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (q *Queries) encodeTime(t time.Time) any {
	if q.dialect == database.DialectSQLite {
		return t.UnixNano()
	}
	return t
}

// rebind rewrites $N placeholders for the current dialect.
func (q *Queries) rebind(query string) string {
	if q.dialect == database.DialectSQLite {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}
