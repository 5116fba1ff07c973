package handlers

import (
	"fmt"
	"net/http"

	"github.com/ghuser/todoapp/pkg/errhttp"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// ClearCompletedResponse is returned by DELETE /api/todos/clear-completed.
type ClearCompletedResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Cleared 2 completed todos"`
	Cleared int    `json:"cleared" example:"2"`
} // @name ClearCompletedResponse

// ClearCompletedHandler handles DELETE /api/todos/clear-completed requests.
type ClearCompletedHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewClearCompletedHandler returns a ClearCompletedHandler backed by the given services.
func NewClearCompletedHandler(svc *appsvcs.Services, log logger.Logger) *ClearCompletedHandler {
	return &ClearCompletedHandler{svc: svc, log: log}
}

// Execute removes every completed todo.
//
//	@Summary		Clear completed todos
//	@Tags			todos
//	@Produce		json
//	@Success		200	{object}	ClearCompletedResponse
//	@Failure		500	{object}	httpx.ErrorEnvelope
//	@Router			/todos/clear-completed [delete]
func (h *ClearCompletedHandler) Execute(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Todo.ClearCompleted(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err, "Failed to clear completed todos")
		return
	}

	httpx.JSON(w, http.StatusOK, ClearCompletedResponse{
		Success: true,
		Message: fmt.Sprintf("Cleared %d completed todos", n),
		Cleared: n,
	})
}
