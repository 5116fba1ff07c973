package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/services/todo/application/handlers"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// TodoRoutes registers the todo API on the provided chi router. svcs is
// shared with the web page so both see the same store.
func TodoRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", handlers.NewListTodosHandler(svcs, a.Logger).Execute)
		r.Post("/", handlers.NewPostTodoHandler(svcs, a.Logger).Execute)
		r.Delete("/clear-completed", handlers.NewClearCompletedHandler(svcs, a.Logger).Execute)
		r.Put("/{id:[0-9]+}", handlers.NewPutTodoHandler(svcs, a.Logger).Execute)
		r.Delete("/{id:[0-9]+}", handlers.NewDeleteTodoHandler(svcs, a.Logger).Execute)
	})
}
