package memory_test

import (
	"testing"

	"github.com/ghuser/todoapp/services/todo/domain/repositories"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/memory"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/repotest"
)

func TestTodoRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repositories.TodoRepository {
		return memory.NewTodoRepository()
	})
}
