package models

import (
	"strings"
	"unicode/utf8"

	"github.com/ghuser/todoapp/services/todo/domain"
)

// MaxTodoTextLength bounds the text column (characters, not bytes).
const MaxTodoTextLength = 255

// TodoText is a value object holding trimmed, non-empty todo text.
type TodoText string

// NewTodoText trims surrounding whitespace from s and validates the result.
// Returns domain.ErrEmptyTodoText or domain.ErrTodoTextTooLong on violation.
func NewTodoText(s string) (TodoText, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", domain.ErrEmptyTodoText
	}
	if utf8.RuneCountInString(t) > MaxTodoTextLength {
		return "", domain.ErrTodoTextTooLong
	}
	return TodoText(t), nil
}

// String returns the underlying string value.
func (t TodoText) String() string {
	return string(t)
}
