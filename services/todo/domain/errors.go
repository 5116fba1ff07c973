package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the todo domain. Use errors.Is() to check these.
var (
	// ErrTodoNotFound indicates the referenced todo id does not exist.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrInvalidTodoText is the umbrella for every caller-supplied text that
	// fails a precondition. The specific causes below wrap it.
	ErrInvalidTodoText = errors.New("invalid todo text")

	// ErrEmptyTodoText indicates the text is empty after trimming whitespace.
	ErrEmptyTodoText = fmt.Errorf("%w: text is required and cannot be empty", ErrInvalidTodoText)

	// ErrTodoTextTooLong indicates the trimmed text exceeds the column bound.
	ErrTodoTextTooLong = fmt.Errorf("%w: text is too long", ErrInvalidTodoText)
)
