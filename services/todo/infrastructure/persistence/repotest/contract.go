// Package repotest holds the behavioural suite every TodoRepository
// implementation must pass. Backend test files call Run with a factory that
// returns a fresh, empty repository.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/todoapp/services/todo/domain"
	"github.com/ghuser/todoapp/services/todo/domain/models"
	"github.com/ghuser/todoapp/services/todo/domain/repositories"
)

// Factory builds an empty repository for one subtest.
type Factory func(t *testing.T) repositories.TodoRepository

// Run executes the contract suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	t.Run("EmptyList", func(t *testing.T) {
		todos, err := newRepo(t).List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, todos)
	})

	t.Run("CreateAssignsIncreasingIDs", func(t *testing.T) {
		repo := newRepo(t)
		a := mustCreate(t, repo, "first")
		b := mustCreate(t, repo, "second")

		assert.Positive(t, a.ID)
		assert.Greater(t, b.ID, a.ID)
		assert.False(t, a.Completed)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		mustCreate(t, repo, "a")
		mustCreate(t, repo, "b")
		mustCreate(t, repo, "c")

		todos, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, todos, 3)
		assert.Equal(t, []string{"c", "b", "a"}, texts(todos))
	})

	t.Run("ListTieBreaksOnID", func(t *testing.T) {
		repo := newRepo(t)
		at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		for _, s := range []string{"x", "y"} {
			todo := models.NewTodo(mustText(t, s))
			todo.CreatedAt = at
			require.NoError(t, repo.Create(context.Background(), todo))
		}

		todos, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"y", "x"}, texts(todos))
	})

	t.Run("CreatedAtRoundTrips", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, "stamp")

		todos, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, todos, 1)
		assert.WithinDuration(t, created.CreatedAt, todos[0].CreatedAt, time.Millisecond)
		assert.Equal(t, time.UTC, todos[0].CreatedAt.Location())
	})

	t.Run("UpdateCompleted", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, "task")

		done := true
		updated, err := repo.Update(context.Background(), created.ID, models.TodoPatch{Completed: &done})
		require.NoError(t, err)
		assert.True(t, updated.Completed)
		assert.Equal(t, "task", updated.Text.String())
		assert.Equal(t, created.ID, updated.ID)
	})

	t.Run("UpdateText", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, "old")

		text := mustText(t, "new")
		updated, err := repo.Update(context.Background(), created.ID, models.TodoPatch{Text: &text})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Text.String())
		assert.False(t, updated.Completed)
	})

	t.Run("UpdateEmptyPatchReturnsCurrent", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, "same")

		updated, err := repo.Update(context.Background(), created.ID, models.TodoPatch{})
		require.NoError(t, err)
		assert.Equal(t, "same", updated.Text.String())
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		done := true
		_, err := newRepo(t).Update(context.Background(), 999, models.TodoPatch{Completed: &done})
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)
	})

	t.Run("UpdatePersists", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, "persist")

		done := true
		_, err := repo.Update(context.Background(), created.ID, models.TodoPatch{Completed: &done})
		require.NoError(t, err)

		todos, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, todos, 1)
		assert.True(t, todos[0].Completed)
	})

	t.Run("ReturnedValuesAreDetached", func(t *testing.T) {
		repo := newRepo(t)
		mustCreate(t, repo, "original")

		todos, err := repo.List(context.Background())
		require.NoError(t, err)
		todos[0].Text = "mutated"
		todos[0].Completed = true

		again, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "original", again[0].Text.String())
		assert.False(t, again[0].Completed)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		keep := mustCreate(t, repo, "keep")
		drop := mustCreate(t, repo, "drop")

		require.NoError(t, repo.Delete(context.Background(), drop.ID))

		todos, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, todos, 1)
		assert.Equal(t, keep.ID, todos[0].ID)
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, "once")

		require.NoError(t, repo.Delete(context.Background(), created.ID))
		assert.ErrorIs(t, repo.Delete(context.Background(), created.ID), domain.ErrTodoNotFound)
	})

	t.Run("IDsNotReused", func(t *testing.T) {
		repo := newRepo(t)
		a := mustCreate(t, repo, "a")
		b := mustCreate(t, repo, "b")
		require.NoError(t, repo.Delete(context.Background(), b.ID))

		c := mustCreate(t, repo, "c")
		assert.Greater(t, c.ID, b.ID)
		assert.Greater(t, c.ID, a.ID)
	})

	t.Run("ClearCompleted", func(t *testing.T) {
		repo := newRepo(t)
		done := true
		for i := range 4 {
			todo := mustCreate(t, repo, fmt.Sprintf("t%d", i))
			if i%2 == 0 {
				_, err := repo.Update(context.Background(), todo.ID, models.TodoPatch{Completed: &done})
				require.NoError(t, err)
			}
		}

		n, err := repo.ClearCompleted(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		todos, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"t3", "t1"}, texts(todos))
		for _, todo := range todos {
			assert.False(t, todo.Completed)
		}
	})

	t.Run("ClearCompletedNothingToClear", func(t *testing.T) {
		repo := newRepo(t)
		mustCreate(t, repo, "active")

		n, err := repo.ClearCompleted(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)

		todos, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, todos, 1)
	})

	t.Run("ConcurrentCreatesGetDistinctIDs", func(t *testing.T) {
		repo := newRepo(t)
		const n = 20

		ids := make(chan int64, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				todo := models.NewTodo(models.TodoText(fmt.Sprintf("c%d", i)))
				if err := repo.Create(context.Background(), todo); err != nil {
					t.Errorf("create: %v", err)
					return
				}
				ids <- todo.ID
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[int64]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)

		todos, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, todos, n)
	})
}

func mustText(t *testing.T, s string) models.TodoText {
	t.Helper()
	text, err := models.NewTodoText(s)
	require.NoError(t, err)
	return text
}

func mustCreate(t *testing.T, repo repositories.TodoRepository, s string) *models.Todo {
	t.Helper()
	todo := models.NewTodo(mustText(t, s))
	require.NoError(t, repo.Create(context.Background(), todo))
	return todo
}

func texts(todos []*models.Todo) []string {
	out := make([]string, len(todos))
	for i, todo := range todos {
		out[i] = todo.Text.String()
	}
	return out
}
