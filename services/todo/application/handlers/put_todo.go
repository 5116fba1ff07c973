package handlers

import (
	"net/http"

	"github.com/ghuser/todoapp/pkg/errhttp"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	pkgvalidator "github.com/ghuser/todoapp/pkg/validator"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// UpdateTodoRequest is the request body for PUT /api/todos/{id}. Both fields
// are optional; completed accepts any JSON value and is read by truthiness.
type UpdateTodoRequest struct {
	Completed Truthy  `json:"completed" swaggertype:"boolean" example:"true"`
	Text      *string `json:"text"      example:"Buy oat milk"`
} // @name UpdateTodoRequest

// PutTodoHandler handles PUT /api/todos/{id} requests.
type PutTodoHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPutTodoHandler returns a PutTodoHandler backed by the given services.
func NewPutTodoHandler(svc *appsvcs.Services, log logger.Logger) *PutTodoHandler {
	return &PutTodoHandler{svc: svc, log: log}
}

// Execute updates the completed flag and/or text of a todo.
//
//	@Summary		Update todo
//	@Description	Sets completed and/or replaces text. Blank text is ignored.
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Todo ID"
//	@Param			request	body		UpdateTodoRequest	true	"Fields to change"
//	@Success		200		{object}	TodoEnvelope
//	@Failure		400		{object}	httpx.ErrorEnvelope
//	@Failure		404		{object}	httpx.ErrorEnvelope
//	@Failure		500		{object}	httpx.ErrorEnvelope
//	@Router			/todos/{id} [put]
func (h *PutTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.DecodeRequest[UpdateTodoRequest](w, r, h.log)
	if !ok {
		return
	}

	todo, err := h.svc.Todo.Update(r.Context(), id, appsvcs.UpdateTodoInput{
		Completed: req.Completed.Ptr(),
		Text:      req.Text,
	})
	if err != nil {
		errhttp.WriteError(w, r, h.log, err, "Failed to update todo")
		return
	}

	httpx.JSON(w, http.StatusOK, TodoEnvelope{Success: true, Todo: toTodoResponse(todo)})
}
