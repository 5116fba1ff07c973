// Package errhttp maps domain sentinel errors to HTTP status codes and the
// public message written in the error envelope.
// Add a case to mapError for each new domain sentinel error.
package errhttp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	tododomain "github.com/ghuser/todoapp/services/todo/domain"
	"github.com/ghuser/todoapp/services/todo/domain/models"
)

// Public messages for the known domain failures.
const (
	MsgTodoNotFound  = "Todo not found"
	MsgTodoTextEmpty = "Todo text is required and cannot be empty"
)

// MsgTodoTextTooLong is the public message for text over the length limit.
var MsgTodoTextTooLong = fmt.Sprintf("Todo text must not exceed %d characters", models.MaxTodoTextLength)

// WriteError maps err to a status code and writes the {"success":false}
// envelope. Unrecognised errors become a 500 carrying fallback (an
// operation-specific message such as "Failed to create todo"); the real
// error is logged and reported to Sentry, never sent to the client.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error, fallback string) {
	status, msg := mapError(err)
	if status == http.StatusInternalServerError {
		msg = fallback
		log.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
	}
	httpx.Fail(w, status, msg)
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, tododomain.ErrTodoNotFound):
		return http.StatusNotFound, MsgTodoNotFound
	case errors.Is(err, tododomain.ErrTodoTextTooLong):
		return http.StatusBadRequest, MsgTodoTextTooLong
	case errors.Is(err, tododomain.ErrInvalidTodoText):
		return http.StatusBadRequest, MsgTodoTextEmpty
	default:
		return http.StatusInternalServerError, ""
	}
}
