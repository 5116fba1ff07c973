package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgcache "github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/services/todo/domain"
	"github.com/ghuser/todoapp/services/todo/domain/models"
	"github.com/ghuser/todoapp/services/todo/domain/repositories"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/memory"
)

// fakeCache is an in-process ListCache that counts calls and mirrors the
// generation check of the Redis implementation.
type fakeCache struct {
	mu          sync.Mutex
	todos       []pkgcache.CachedTodo
	hit         bool
	gen         int64
	getErr      error
	gets        int
	sets        int
	invalidates int
}

func (c *fakeCache) Get(context.Context) ([]pkgcache.CachedTodo, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, 0, c.getErr
	}
	if !c.hit {
		return nil, c.gen, redis.Nil
	}
	return c.todos, c.gen, nil
}

func (c *fakeCache) Set(_ context.Context, gen int64, todos []pkgcache.CachedTodo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if gen != c.gen {
		return nil
	}
	c.todos, c.hit = todos, true
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidates++
	c.gen++
	c.todos, c.hit = nil, false
	return nil
}

// pausingRepo holds its first List call after reading the store until
// release is closed.
type pausingRepo struct {
	repositories.TodoRepository
	once    sync.Once
	paused  chan struct{}
	release chan struct{}
}

func (r *pausingRepo) List(ctx context.Context) ([]*models.Todo, error) {
	todos, err := r.TodoRepository.List(ctx)
	r.once.Do(func() {
		close(r.paused)
		<-r.release
	})
	return todos, err
}

func newService(c ListCache) *TodoService {
	return NewTodoService(memory.NewTodoRepository(), c, logger.Discard())
}

func ptr[T any](v T) *T { return &v }

func TestTodoService_CreateTrimsText(t *testing.T) {
	svc := newService(nil)

	todo, err := svc.Create(context.Background(), "  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", todo.Text.String())
	assert.False(t, todo.Completed)
	assert.Equal(t, int64(1), todo.ID)
}

func TestTodoService_CreateRejectsBlank(t *testing.T) {
	svc := newService(nil)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(context.Background(), text)
		assert.ErrorIs(t, err, domain.ErrEmptyTodoText, "text %q", text)
	}

	todos, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestTodoService_CreateRejectsTooLong(t *testing.T) {
	svc := newService(nil)

	_, err := svc.Create(context.Background(), strings.Repeat("x", 256))
	assert.ErrorIs(t, err, domain.ErrTodoTextTooLong)

	_, err = svc.Create(context.Background(), strings.Repeat("é", 255))
	assert.NoError(t, err)
}

func TestTodoService_UpdateBlankTextIgnored(t *testing.T) {
	svc := newService(nil)
	created, err := svc.Create(context.Background(), "keep me")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateTodoInput{
		Completed: ptr(true),
		Text:      ptr("   "),
	})
	require.NoError(t, err)
	assert.Equal(t, "keep me", updated.Text.String())
	assert.True(t, updated.Completed)
}

func TestTodoService_UpdateText(t *testing.T) {
	svc := newService(nil)
	created, err := svc.Create(context.Background(), "old")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateTodoInput{Text: ptr(" new ")})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Text.String())
}

func TestTodoService_UpdateMissing(t *testing.T) {
	_, err := newService(nil).Update(context.Background(), 42, UpdateTodoInput{Completed: ptr(true)})
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestTodoService_UpdateTooLong(t *testing.T) {
	svc := newService(nil)
	created, err := svc.Create(context.Background(), "short")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdateTodoInput{Text: ptr(strings.Repeat("y", 300))})
	assert.ErrorIs(t, err, domain.ErrTodoTextTooLong)
}

func TestTodoService_DeleteMissing(t *testing.T) {
	assert.ErrorIs(t, newService(nil).Delete(context.Background(), 7), domain.ErrTodoNotFound)
}

func TestTodoService_ClearCompleted(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	a, _ := svc.Create(ctx, "a")
	_, _ = svc.Create(ctx, "b")
	_, err := svc.Update(ctx, a.ID, UpdateTodoInput{Completed: ptr(true)})
	require.NoError(t, err)

	n, err := svc.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTodoService_ListReadThrough(t *testing.T) {
	c := &fakeCache{}
	svc := newService(c)
	ctx := context.Background()

	_, err := svc.Create(ctx, "cached")
	require.NoError(t, err)

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, c.sets)

	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, c.sets, "second list should be served from cache")
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, "cached", second[0].Text.String())
}

func TestTodoService_MutationsInvalidate(t *testing.T) {
	c := &fakeCache{}
	svc := newService(c)
	ctx := context.Background()

	todo, err := svc.Create(ctx, "x")
	require.NoError(t, err)
	_, err = svc.Update(ctx, todo.ID, UpdateTodoInput{Completed: ptr(true)})
	require.NoError(t, err)
	_, err = svc.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, c.invalidates)

	other, err := svc.Create(ctx, "y")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, other.ID))
	assert.Equal(t, 5, c.invalidates)

	// failed mutations leave the cache alone
	_, err = svc.Create(ctx, " ")
	require.Error(t, err)
	require.Error(t, svc.Delete(ctx, 999))
	assert.Equal(t, 5, c.invalidates)
}

func TestTodoService_ListCacheErrorFallsBack(t *testing.T) {
	c := &fakeCache{getErr: errors.New("redis down")}
	svc := newService(c)
	ctx := context.Background()

	_, err := svc.Create(ctx, "still works")
	require.NoError(t, err)

	todos, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}

func TestTodoService_ListDoesNotCacheSnapshotOlderThanWrite(t *testing.T) {
	c := &fakeCache{}
	repo := &pausingRepo{
		TodoRepository: memory.NewTodoRepository(),
		paused:         make(chan struct{}),
		release:        make(chan struct{}),
	}
	svc := NewTodoService(repo, c, logger.Discard())
	ctx := context.Background()

	done := make(chan []*models.Todo)
	go func() {
		todos, err := svc.List(ctx)
		assert.NoError(t, err)
		done <- todos
	}()

	<-repo.paused
	_, err := svc.Create(ctx, "buy milk")
	require.NoError(t, err)
	close(repo.release)
	assert.Empty(t, <-done, "the slow reader saw the store before the write")

	todos, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1, "list after a finished create must include it")
	assert.Equal(t, "buy milk", todos[0].Text.String())
}

func TestTodoService_CountsBypassesCache(t *testing.T) {
	c := &fakeCache{}
	svc := newService(c)
	ctx := context.Background()

	_, err := svc.Create(ctx, "a")
	require.NoError(t, err)

	active, completed, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
	assert.Zero(t, completed)
	assert.Zero(t, c.gets)
	assert.Zero(t, c.sets)
}

func TestTodoService_Counts(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, text)
		require.NoError(t, err)
	}
	todos, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.Update(ctx, todos[0].ID, UpdateTodoInput{Completed: ptr(true)})
	require.NoError(t, err)

	active, completed, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, active)
	assert.Equal(t, 1, completed)
}
