package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoapp/pkg/errhttp"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/services/todo/domain/models"
)

// TodoResponse is the wire shape of a todo.
type TodoResponse struct {
	ID        int64     `json:"id"         example:"1"`
	Text      string    `json:"text"       example:"Buy milk"`
	Completed bool      `json:"completed"  example:"false"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
} // @name Todo

// TodoEnvelope wraps a single todo.
type TodoEnvelope struct {
	Success bool         `json:"success" example:"true"`
	Todo    TodoResponse `json:"todo"`
} // @name TodoEnvelope

// MessageEnvelope wraps a confirmation message.
type MessageEnvelope struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Todo deleted successfully"`
} // @name MessageEnvelope

func toTodoResponse(t *models.Todo) TodoResponse {
	return TodoResponse{
		ID:        t.ID,
		Text:      t.Text.String(),
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
}

// todoID reads the {id} path parameter. The route pattern only admits
// digits, so the only failure left is overflow, which cannot name a
// stored todo and is answered with 404.
func todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusNotFound, errhttp.MsgTodoNotFound)
		return 0, false
	}
	return id, true
}

// Truthy is a request field that accepts any JSON value and keeps its
// truthiness: false, 0, "", null, [] and {} are false, everything else is
// true. Set reports whether the field appeared in the body at all.
type Truthy struct {
	Set   bool
	Value bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Truthy) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	t.Set = true
	t.Value = truthy(v)
	return nil
}

// Ptr returns nil when the field was absent, otherwise a pointer to its value.
func (t Truthy) Ptr() *bool {
	if !t.Set {
		return nil
	}
	v := t.Value
	return &v
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
