// Package memory implements repositories.TodoRepository in process memory.
// Data lives for the lifetime of the process only.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/ghuser/todoapp/services/todo/domain"
	"github.com/ghuser/todoapp/services/todo/domain/models"
)

// TodoRepository keeps todos in a slice guarded by a single mutex. Every
// method holds the lock for its whole read-modify-write, so concurrent
// requests never lose updates or hand out the same ID twice.
type TodoRepository struct {
	mu     sync.Mutex
	todos  []*models.Todo
	nextID int64
}

// NewTodoRepository returns an empty store whose first ID is 1.
func NewTodoRepository() *TodoRepository {
	return &TodoRepository{nextID: 1}
}

// List returns copies of all todos, newest first.
func (r *TodoRepository) List(_ context.Context) ([]*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Todo, len(r.todos))
	for i, t := range r.todos {
		out[i] = t.Clone()
	}
	slices.SortStableFunc(out, newestFirst)
	return out, nil
}

// Create assigns the next ID to todo and stores a copy of it.
func (r *TodoRepository) Create(_ context.Context, todo *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo.ID = r.nextID
	r.nextID++
	r.todos = append(r.todos, todo.Clone())
	return nil
}

// Update applies patch to the stored todo and returns a copy of the result.
func (r *TodoRepository) Update(_ context.Context, id int64, patch models.TodoPatch) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrTodoNotFound
	}
	patch.Apply(r.todos[i])
	return r.todos[i].Clone(), nil
}

// Delete removes the todo with the given ID.
func (r *TodoRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrTodoNotFound
	}
	r.todos = slices.Delete(r.todos, i, i+1)
	return nil
}

// ClearCompleted drops every completed todo and reports how many went.
func (r *TodoRepository) ClearCompleted(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.todos)
	r.todos = slices.DeleteFunc(r.todos, func(t *models.Todo) bool { return t.Completed })
	return before - len(r.todos), nil
}

func (r *TodoRepository) indexOf(id int64) int {
	return slices.IndexFunc(r.todos, func(t *models.Todo) bool { return t.ID == id })
}

func newestFirst(a, b *models.Todo) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}
