package repositories

import (
	"context"

	"github.com/ghuser/todoapp/services/todo/domain/models"
)

// TodoRepository is the persistence interface for the Todo aggregate.
// The domain layer owns this interface; infrastructure implements it
// (memory, postgres, sqlite). Each call is atomic on its own: it either
// takes full effect or leaves the store exactly as it was.
type TodoRepository interface {
	// List returns every todo, newest first (created_at DESC, id DESC).
	List(ctx context.Context) ([]*models.Todo, error)

	// Create persists todo and assigns its ID in place.
	Create(ctx context.Context, todo *models.Todo) error

	// Update applies patch to the todo with the given id and returns the
	// result. Returns domain.ErrTodoNotFound if the id does not exist.
	Update(ctx context.Context, id int64, patch models.TodoPatch) (*models.Todo, error)

	// Delete removes the todo. Returns domain.ErrTodoNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// ClearCompleted removes every completed todo and returns how many went.
	ClearCompleted(ctx context.Context) (int, error)
}
