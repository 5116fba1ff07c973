package handlers

import (
	"net/http"

	"github.com/ghuser/todoapp/pkg/errhttp"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// ListTodosResponse is returned by GET /api/todos.
type ListTodosResponse struct {
	Success bool           `json:"success" example:"true"`
	Todos   []TodoResponse `json:"todos"`
} // @name ListTodosResponse

// ListTodosHandler handles GET /api/todos requests.
type ListTodosHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewListTodosHandler returns a ListTodosHandler backed by the given services.
func NewListTodosHandler(svc *appsvcs.Services, log logger.Logger) *ListTodosHandler {
	return &ListTodosHandler{svc: svc, log: log}
}

// Execute lists every todo, newest first.
//
//	@Summary		List todos
//	@Description	Returns every todo ordered by creation time, newest first
//	@Tags			todos
//	@Produce		json
//	@Success		200	{object}	ListTodosResponse
//	@Failure		500	{object}	httpx.ErrorEnvelope
//	@Router			/todos [get]
func (h *ListTodosHandler) Execute(w http.ResponseWriter, r *http.Request) {
	todos, err := h.svc.Todo.List(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err, "Failed to retrieve todos")
		return
	}

	out := make([]TodoResponse, len(todos))
	for i, t := range todos {
		out[i] = toTodoResponse(t)
	}
	httpx.JSON(w, http.StatusOK, ListTodosResponse{Success: true, Todos: out})
}
