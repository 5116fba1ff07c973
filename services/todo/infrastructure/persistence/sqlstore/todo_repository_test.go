package sqlstore_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/todoapp/migrations/todo"
	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/migrator"
	"github.com/ghuser/todoapp/services/todo/domain"
	domainevents "github.com/ghuser/todoapp/services/todo/domain/events"
	"github.com/ghuser/todoapp/services/todo/domain/models"
	"github.com/ghuser/todoapp/services/todo/domain/repositories"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/repotest"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/sqlstore"
)

func newSQLite(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "todo.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	files, err := todo.FS(database.DialectSQLite)
	require.NoError(t, err)
	require.NoError(t, migrator.RunMigrations(db, files))
	return db
}

func TestTodoRepository_SQLite(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repositories.TodoRepository {
		return sqlstore.NewTodoRepository(newSQLite(t), nil)
	})
}

// Integration test: skipped unless DATABASE_URL points at a Postgres instance.
func TestTodoRepository_Postgres(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping postgres integration tests")
	}

	repotest.Run(t, func(t *testing.T) repositories.TodoRepository {
		db, err := database.NewPool(context.Background(), url, logger.Discard())
		require.NoError(t, err)
		t.Cleanup(db.Close)

		files, err := todo.FS(database.DialectPostgres)
		require.NoError(t, err)
		require.NoError(t, migrator.RunMigrations(db, files))

		_, err = db.DB().Exec("TRUNCATE todos")
		require.NoError(t, err)
		return sqlstore.NewTodoRepository(db, nil)
	})
}

// recordingBus captures messages published inside repository transactions.
type recordingBus struct {
	topics   []string
	payloads [][]byte
	fail     error
}

func (b *recordingBus) NewTxPublisher(*sql.Tx) (message.Publisher, error) {
	return b, nil
}

func (b *recordingBus) Publish(topic string, msgs ...*message.Message) error {
	if b.fail != nil {
		return b.fail
	}
	for _, m := range msgs {
		b.topics = append(b.topics, topic)
		b.payloads = append(b.payloads, m.Payload)
	}
	return nil
}

func (b *recordingBus) Close() error { return nil }

func TestTodoRepository_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}
	repo := sqlstore.NewTodoRepository(newSQLite(t), bus)

	created := models.NewTodo("write tests")
	require.NoError(t, repo.Create(ctx, created))

	done := true
	_, err := repo.Update(ctx, created.ID, models.TodoPatch{Completed: &done})
	require.NoError(t, err)

	n, err := repo.ClearCompleted(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// nothing left to clear: no event
	_, err = repo.ClearCompleted(ctx)
	require.NoError(t, err)

	other := models.NewTodo("delete me")
	require.NoError(t, repo.Create(ctx, other))
	require.NoError(t, repo.Delete(ctx, other.ID))

	assert.Equal(t, []string{
		domainevents.TopicTodoCreated,
		domainevents.TopicTodoUpdated,
		domainevents.TopicTodoCompletedCleared,
		domainevents.TopicTodoCreated,
		domainevents.TopicTodoDeleted,
	}, bus.topics)

	var evt domainevents.TodoChangedEvent
	require.NoError(t, json.Unmarshal(bus.payloads[1], &evt))
	assert.Equal(t, created.ID, evt.TodoID)
	assert.True(t, evt.Completed)
}

func TestTodoRepository_EmptyPatchPublishesNothing(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}
	repo := sqlstore.NewTodoRepository(newSQLite(t), bus)

	created := models.NewTodo("unchanged")
	require.NoError(t, repo.Create(ctx, created))

	got, err := repo.Update(ctx, created.ID, models.TodoPatch{})
	require.NoError(t, err)
	assert.Equal(t, "unchanged", got.Text.String())
	assert.Equal(t, []string{domainevents.TopicTodoCreated}, bus.topics)

	_, err = repo.Update(ctx, created.ID+1, models.TodoPatch{})
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestTodoRepository_SQLiteDefaultsCreatedAt(t *testing.T) {
	ctx := context.Background()
	db := newSQLite(t)
	repo := sqlstore.NewTodoRepository(db, nil)

	before := time.Now().Add(-time.Second)
	_, err := db.DB().ExecContext(ctx, "INSERT INTO todos (text) VALUES ('inserted by hand')")
	require.NoError(t, err)

	todos, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.False(t, todos[0].Completed)
	assert.WithinRange(t, todos[0].CreatedAt, before, time.Now().Add(time.Second))
}

func TestTodoRepository_PublishFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{fail: assert.AnError}
	repo := sqlstore.NewTodoRepository(newSQLite(t), bus)

	todo := models.NewTodo("never stored")
	err := repo.Create(ctx, todo)
	require.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, todo.ID)

	todos, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos)
}
