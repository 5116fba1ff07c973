package handlers

import (
	"net/http"

	"github.com/ghuser/todoapp/pkg/errhttp"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// DeleteTodoHandler handles DELETE /api/todos/{id} requests.
type DeleteTodoHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewDeleteTodoHandler returns a DeleteTodoHandler backed by the given services.
func NewDeleteTodoHandler(svc *appsvcs.Services, log logger.Logger) *DeleteTodoHandler {
	return &DeleteTodoHandler{svc: svc, log: log}
}

// Execute deletes a todo.
//
//	@Summary		Delete todo
//	@Tags			todos
//	@Produce		json
//	@Param			id	path		int	true	"Todo ID"
//	@Success		200	{object}	MessageEnvelope
//	@Failure		404	{object}	httpx.ErrorEnvelope
//	@Failure		500	{object}	httpx.ErrorEnvelope
//	@Router			/todos/{id} [delete]
func (h *DeleteTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Todo.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, r, h.log, err, "Failed to delete todo")
		return
	}

	httpx.JSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Todo deleted successfully"})
}
