// Package sqlstore implements repositories.TodoRepository on a relational
// database (Postgres or SQLite). Every operation runs in its own short
// transaction; when an event publisher is configured, the matching domain
// event is written to the outbox inside that same transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/events"
	"github.com/ghuser/todoapp/services/todo/domain"
	domainevents "github.com/ghuser/todoapp/services/todo/domain/events"
	"github.com/ghuser/todoapp/services/todo/domain/models"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/sqlstore/db"
)

// TxPublisher hands out a watermill publisher bound to a transaction.
// *events.EventBus satisfies it.
type TxPublisher interface {
	NewTxPublisher(tx *sql.Tx) (message.Publisher, error)
}

// TodoRepository implements repositories.TodoRepository against SQL.
type TodoRepository struct {
	db  *database.Database
	bus TxPublisher
}

// NewTodoRepository returns a TodoRepository backed by the given database.
// bus may be nil, in which case no events are published.
func NewTodoRepository(database *database.Database, bus TxPublisher) *TodoRepository {
	return &TodoRepository{db: database, bus: bus}
}

// List returns all todos newest first.
func (r *TodoRepository) List(ctx context.Context) ([]*models.Todo, error) {
	q := db.New(r.db.DB(), r.db.Dialect())
	rows, err := q.ListTodos(ctx)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}

	todos := make([]*models.Todo, len(rows))
	for i, row := range rows {
		todos[i] = rowToTodo(row)
	}
	return todos, nil
}

// Create inserts todo, fills in its generated ID (and the stored created_at,
// which may be truncated to the column precision) and publishes todo.created.
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	var stored *models.Todo
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row, err := db.New(tx, r.db.Dialect()).InsertTodo(ctx, db.InsertTodoParams{
			Text:      todo.Text.String(),
			Completed: todo.Completed,
			CreatedAt: todo.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("insert todo: %w", err)
		}
		stored = rowToTodo(row)

		if err := r.publish(ctx, tx, domainevents.TopicTodoCreated, changedEvent(stored)); err != nil {
			return fmt.Errorf("publish todo created: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	todo.ID = stored.ID
	todo.CreatedAt = stored.CreatedAt
	return nil
}

// Update applies patch in a single UPDATE ... RETURNING statement.
// Returns ErrTodoNotFound when no row matches id. An empty patch reads the
// row back without publishing todo.updated.
func (r *TodoRepository) Update(ctx context.Context, id int64, patch models.TodoPatch) (*models.Todo, error) {
	params := db.UpdateTodoParams{ID: id}
	if patch.Completed != nil {
		params.Completed = sql.NullBool{Bool: *patch.Completed, Valid: true}
	}
	if patch.Text != nil {
		params.Text = sql.NullString{String: patch.Text.String(), Valid: true}
	}

	var updated *models.Todo
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row, err := db.New(tx, r.db.Dialect()).UpdateTodo(ctx, params)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrTodoNotFound
			}
			return fmt.Errorf("update todo: %w", err)
		}
		updated = rowToTodo(row)
		if patch.Empty() {
			return nil
		}

		if err := r.publish(ctx, tx, domainevents.TopicTodoUpdated, changedEvent(updated)); err != nil {
			return fmt.Errorf("publish todo updated: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a todo by ID. Returns ErrTodoNotFound when no row matches.
func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx, r.db.Dialect()).DeleteTodo(ctx, id)
		if err != nil {
			return fmt.Errorf("delete todo: %w", err)
		}
		if n == 0 {
			return domain.ErrTodoNotFound
		}

		evt := domainevents.TodoDeletedEvent{
			EventID:    uuid.New(),
			Version:    1,
			TodoID:     id,
			OccurredAt: time.Now().UTC(),
		}
		if err := r.publish(ctx, tx, domainevents.TopicTodoDeleted, evt); err != nil {
			return fmt.Errorf("publish todo deleted: %w", err)
		}
		return nil
	})
}

// ClearCompleted deletes every completed todo and returns the count.
func (r *TodoRepository) ClearCompleted(ctx context.Context) (int, error) {
	var cleared int
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx, r.db.Dialect()).DeleteCompletedTodos(ctx)
		if err != nil {
			return fmt.Errorf("delete completed todos: %w", err)
		}
		cleared = int(n)
		if cleared == 0 {
			return nil
		}

		evt := domainevents.CompletedClearedEvent{
			EventID:    uuid.New(),
			Version:    1,
			Cleared:    cleared,
			OccurredAt: time.Now().UTC(),
		}
		if err := r.publish(ctx, tx, domainevents.TopicTodoCompletedCleared, evt); err != nil {
			return fmt.Errorf("publish completed cleared: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cleared, nil
}

// publish writes evt to topic through a publisher bound to tx, so the event
// commits or rolls back together with the data change.
func (r *TodoRepository) publish(ctx context.Context, tx *sql.Tx, topic string, evt any) error {
	if r.bus == nil {
		return nil
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_version", "1")
	events.InjectTrace(ctx, msg)

	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return p.Publish(topic, msg)
}

func changedEvent(t *models.Todo) domainevents.TodoChangedEvent {
	return domainevents.TodoChangedEvent{
		EventID:    uuid.New(),
		Version:    1,
		TodoID:     t.ID,
		Text:       t.Text.String(),
		Completed:  t.Completed,
		CreatedAt:  t.CreatedAt,
		OccurredAt: time.Now().UTC(),
	}
}

// rowToTodo maps a db.TodoRow to a domain models.Todo.
func rowToTodo(row db.TodoRow) *models.Todo {
	return &models.Todo{
		ID:        row.ID,
		Text:      models.TodoText(row.Text),
		Completed: row.Completed,
		CreatedAt: row.CreatedAt,
	}
}
