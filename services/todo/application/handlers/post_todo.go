package handlers

import (
	"net/http"

	"github.com/ghuser/todoapp/pkg/errhttp"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	pkgvalidator "github.com/ghuser/todoapp/pkg/validator"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// CreateTodoRequest is the request body for POST /api/todos.
type CreateTodoRequest struct {
	Text string `json:"text" validate:"required" example:"Buy milk"`
} // @name CreateTodoRequest

// ValidationMessage implements validator.Messager.
func (CreateTodoRequest) ValidationMessage() string {
	return errhttp.MsgTodoTextEmpty
}

// PostTodoHandler handles POST /api/todos requests.
type PostTodoHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPostTodoHandler returns a PostTodoHandler backed by the given services.
func NewPostTodoHandler(svc *appsvcs.Services, log logger.Logger) *PostTodoHandler {
	return &PostTodoHandler{svc: svc, log: log}
}

// Execute creates a new todo.
//
//	@Summary		Create todo
//	@Description	Creates a todo from non-blank text (trimmed, at most 255 characters)
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateTodoRequest	true	"Todo creation request"
//	@Success		201		{object}	TodoEnvelope
//	@Failure		400		{object}	httpx.ErrorEnvelope
//	@Failure		500		{object}	httpx.ErrorEnvelope
//	@Router			/todos [post]
func (h *PostTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.DecodeRequest[CreateTodoRequest](w, r, h.log)
	if !ok {
		return
	}

	todo, err := h.svc.Todo.Create(r.Context(), req.Text)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err, "Failed to create todo")
		return
	}

	httpx.JSON(w, http.StatusCreated, TodoEnvelope{Success: true, Todo: toTodoResponse(todo)})
}
