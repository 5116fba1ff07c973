package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/services/todo/application/api"
	"github.com/ghuser/todoapp/services/todo/application/handlers"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
	"github.com/ghuser/todoapp/services/todo/domain/models"
)

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(t *testing.T, svcs *appsvcs.Services) http.Handler {
	t.Helper()
	a := &app.Application{Logger: logger.Discard()}
	if svcs == nil {
		svcs = appsvcs.New(a)
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{ServiceName: "test", CORSAllowedOrigins: "*", RequestsPerMinute: 10000},
		passthrough, logger.Recovery(a.Logger), passthrough, passthrough,
	)
	r.Route("/api", func(r chi.Router) {
		api.TodoRoutes(r, a, svcs)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func create(t *testing.T, h http.Handler, text string) handlers.TodoResponse {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/todos", `{"text":`+jsonString(text)+`}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[handlers.TodoEnvelope](t, rr).Todo
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	body := decode[httpx.ErrorEnvelope](t, rr)
	assert.False(t, body.Success)
	assert.Equal(t, msg, body.Error)
}

func TestListEmpty(t *testing.T) {
	rr := do(t, newRouter(t, nil), http.MethodGet, "/api/todos", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"todos":[]}`, rr.Body.String())
}

func TestCreateThenList(t *testing.T) {
	h := newRouter(t, nil)

	first := create(t, h, "  Buy milk ")
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Buy milk", first.Text)
	assert.False(t, first.Completed)
	assert.False(t, first.CreatedAt.IsZero())

	second := create(t, h, "Walk dog")
	assert.Equal(t, int64(2), second.ID)

	rr := do(t, h, http.MethodGet, "/api/todos", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[handlers.ListTodosResponse](t, rr)
	assert.True(t, list.Success)
	require.Len(t, list.Todos, 2)
	assert.Equal(t, "Walk dog", list.Todos[0].Text)
	assert.Equal(t, "Buy milk", list.Todos[1].Text)
}

func TestCreateWireShape(t *testing.T) {
	rr := do(t, newRouter(t, nil), http.MethodPost, "/api/todos", `{"text":"shape"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.ElementsMatch(t, []string{"success", "todo"}, keys(raw))
	assert.JSONEq(t, "true", string(raw["success"]))

	var todo map[string]any
	require.NoError(t, json.Unmarshal(raw["todo"], &todo))
	assert.ElementsMatch(t, []string{"id", "text", "completed", "created_at"}, keys(todo))
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestCreateValidation(t *testing.T) {
	h := newRouter(t, nil)

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{}`, `null`, ""} {
		rr := do(t, h, http.MethodPost, "/api/todos", body)
		assertError(t, rr, http.StatusBadRequest, "Todo text is required and cannot be empty")
	}

	rr := do(t, h, http.MethodPost, "/api/todos", `{"text":`+jsonString(strings.Repeat("a", 256))+`}`)
	assertError(t, rr, http.StatusBadRequest, "Todo text must not exceed 255 characters")

	rr = do(t, h, http.MethodPost, "/api/todos", `{"text":`)
	assertError(t, rr, http.StatusBadRequest, httpx.MsgInvalidJSON)

	list := decode[handlers.ListTodosResponse](t, do(t, h, http.MethodGet, "/api/todos", ""))
	assert.Empty(t, list.Todos)
}

func TestUpdateCompletedTruthiness(t *testing.T) {
	h := newRouter(t, nil)
	todo := create(t, h, "toggle")

	rr := do(t, h, http.MethodPut, "/api/todos/1", `{"completed": 1}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[handlers.TodoEnvelope](t, rr)
	assert.True(t, got.Success)
	assert.True(t, got.Todo.Completed)
	assert.Equal(t, todo.ID, got.Todo.ID)
	assert.True(t, todo.CreatedAt.Equal(got.Todo.CreatedAt))

	rr = do(t, h, http.MethodPut, "/api/todos/1", `{"completed": ""}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[handlers.TodoEnvelope](t, rr).Todo.Completed)
}

func TestUpdateBlankTextIgnored(t *testing.T) {
	h := newRouter(t, nil)
	create(t, h, "original")

	rr := do(t, h, http.MethodPut, "/api/todos/1", `{"text":"   ","completed":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[handlers.TodoEnvelope](t, rr).Todo
	assert.Equal(t, "original", got.Text)
	assert.True(t, got.Completed)
}

func TestUpdateText(t *testing.T) {
	h := newRouter(t, nil)
	create(t, h, "before")

	rr := do(t, h, http.MethodPut, "/api/todos/1", `{"text":"  after "}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "after", decode[handlers.TodoEnvelope](t, rr).Todo.Text)
}

func TestUpdateEmptyBodyReturnsCurrent(t *testing.T) {
	h := newRouter(t, nil)
	create(t, h, "same")

	rr := do(t, h, http.MethodPut, "/api/todos/1", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "same", decode[handlers.TodoEnvelope](t, rr).Todo.Text)
}

func TestUpdateErrors(t *testing.T) {
	h := newRouter(t, nil)
	create(t, h, "x")

	assertError(t, do(t, h, http.MethodPut, "/api/todos/99", `{"completed":true}`), http.StatusNotFound, "Todo not found")
	assertError(t, do(t, h, http.MethodPut, "/api/todos/1", `{"completed":`), http.StatusBadRequest, httpx.MsgInvalidJSON)
	assertError(t, do(t, h, http.MethodPut, "/api/todos/1", `{"text":`+jsonString(strings.Repeat("b", 300))+`}`),
		http.StatusBadRequest, "Todo text must not exceed 255 characters")
	assertError(t, do(t, h, http.MethodPut, "/api/todos/99999999999999999999", `{"completed":true}`), http.StatusNotFound, "Todo not found")
}

func TestNonNumericIDIsUnknownEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	assertError(t, do(t, h, http.MethodPut, "/api/todos/abc", `{"completed":true}`), http.StatusNotFound, httpx.MsgEndpointNotFound)
	assertError(t, do(t, h, http.MethodDelete, "/api/todos/-1", ""), http.StatusNotFound, httpx.MsgEndpointNotFound)
}

func TestDelete(t *testing.T) {
	h := newRouter(t, nil)
	create(t, h, "gone")

	rr := do(t, h, http.MethodDelete, "/api/todos/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Todo deleted successfully"}`, rr.Body.String())

	assertError(t, do(t, h, http.MethodDelete, "/api/todos/1", ""), http.StatusNotFound, "Todo not found")

	next := create(t, h, "fresh")
	assert.Equal(t, int64(2), next.ID, "ids are never reused")
}

func TestClearCompleted(t *testing.T) {
	h := newRouter(t, nil)
	create(t, h, "a")
	create(t, h, "b")
	create(t, h, "c")
	do(t, h, http.MethodPut, "/api/todos/1", `{"completed":true}`)
	do(t, h, http.MethodPut, "/api/todos/3", `{"completed":true}`)

	rr := do(t, h, http.MethodDelete, "/api/todos/clear-completed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Cleared 2 completed todos","cleared":2}`, rr.Body.String())

	list := decode[handlers.ListTodosResponse](t, do(t, h, http.MethodGet, "/api/todos", ""))
	require.Len(t, list.Todos, 1)
	assert.Equal(t, "b", list.Todos[0].Text)

	rr = do(t, h, http.MethodDelete, "/api/todos/clear-completed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Cleared 0 completed todos")
}

func TestWrongMethod(t *testing.T) {
	h := newRouter(t, nil)
	assertError(t, do(t, h, http.MethodPatch, "/api/todos", ""), http.StatusMethodNotAllowed, httpx.MsgMethodNotAllowed)
	assertError(t, do(t, h, http.MethodPut, "/api/todos/clear-completed", ""), http.StatusMethodNotAllowed, httpx.MsgMethodNotAllowed)
}

func TestUnknownEndpoint(t *testing.T) {
	assertError(t, do(t, newRouter(t, nil), http.MethodGet, "/api/nothing", ""), http.StatusNotFound, httpx.MsgEndpointNotFound)
}

// brokenRepo fails every call with an internal error.
type brokenRepo struct{}

var errBroken = errors.New("connection refused")

func (brokenRepo) List(context.Context) ([]*models.Todo, error)  { return nil, errBroken }
func (brokenRepo) Create(context.Context, *models.Todo) error    { return errBroken }
func (brokenRepo) Delete(context.Context, int64) error           { return errBroken }
func (brokenRepo) ClearCompleted(context.Context) (int, error)   { return 0, errBroken }
func (brokenRepo) Update(context.Context, int64, models.TodoPatch) (*models.Todo, error) {
	return nil, errBroken
}

func TestInternalErrorsUseOperationMessages(t *testing.T) {
	svcs := &appsvcs.Services{Todo: appsvcs.NewTodoService(brokenRepo{}, nil, logger.Discard())}
	h := newRouter(t, svcs)

	tests := []struct {
		method, path, body, msg string
	}{
		{http.MethodGet, "/api/todos", "", "Failed to retrieve todos"},
		{http.MethodPost, "/api/todos", `{"text":"x"}`, "Failed to create todo"},
		{http.MethodPut, "/api/todos/1", `{"completed":true}`, "Failed to update todo"},
		{http.MethodDelete, "/api/todos/1", "", "Failed to delete todo"},
		{http.MethodDelete, "/api/todos/clear-completed", "", "Failed to clear completed todos"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			assertError(t, rr, http.StatusInternalServerError, tt.msg)
			assert.NotContains(t, rr.Body.String(), "connection refused")
		})
	}
}
