package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	tododomain "github.com/ghuser/todoapp/services/todo/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"ErrTodoNotFound", tododomain.ErrTodoNotFound, http.StatusNotFound, MsgTodoNotFound},
		{"wrapped ErrTodoNotFound", fmt.Errorf("update todo: %w", tododomain.ErrTodoNotFound), http.StatusNotFound, MsgTodoNotFound},
		{"ErrEmptyTodoText", tododomain.ErrEmptyTodoText, http.StatusBadRequest, MsgTodoTextEmpty},
		{"ErrTodoTextTooLong", tododomain.ErrTodoTextTooLong, http.StatusBadRequest, MsgTodoTextTooLong},
		{"wrapped ErrTodoTextTooLong", fmt.Errorf("build patch: %w", tododomain.ErrTodoTextTooLong), http.StatusBadRequest, MsgTodoTextTooLong},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError, "Failed to do it"},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError, "Failed to do it"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/todos", http.NoBody)
			WriteError(w, r, logger.Discard(), tt.err, "Failed to do it")

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body httpx.ErrorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("response body is not valid JSON: %v", err)
			}
			if body.Success {
				t.Error("expected success=false")
			}
			if body.Error != tt.wantMsg {
				t.Errorf("expected error %q, got %q", tt.wantMsg, body.Error)
			}
		})
	}
}

func TestWriteError_DoesNotLeakInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/todos", http.NoBody)
	WriteError(w, r, logger.Discard(), errors.New("pq: password authentication failed"), "Failed to retrieve todos")

	var body httpx.ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body.Error != "Failed to retrieve todos" {
		t.Errorf("unexpected error message %q", body.Error)
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	WriteError(w, r, logger.Discard(), tododomain.ErrTodoNotFound, "")

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}
