package services

import (
	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/services/todo/domain/repositories"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/memory"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/sqlstore"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Todo *TodoService
}

// New wires the todo services with infrastructure from the Application container.
// Without a database the in-memory repository is used; the Redis list cache
// is only wired in front of a durable store.
func New(a *app.Application) *Services {
	var repo repositories.TodoRepository
	var listCache ListCache

	if a.Db == nil {
		repo = memory.NewTodoRepository()
	} else {
		var bus sqlstore.TxPublisher
		if a.EventBus != nil {
			bus = a.EventBus
		}
		repo = sqlstore.NewTodoRepository(a.Db, bus)

		if a.Redis != nil {
			listCache = cache.NewTodoListCache(a.Redis)
		}
	}

	return &Services{
		Todo: NewTodoService(repo, listCache, a.Logger),
	}
}
