package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_NonNil(t *testing.T) {
	for name, err := range map[string]error{
		"ErrTodoNotFound":    ErrTodoNotFound,
		"ErrInvalidTodoText": ErrInvalidTodoText,
		"ErrEmptyTodoText":   ErrEmptyTodoText,
		"ErrTodoTextTooLong": ErrTodoTextTooLong,
	} {
		if err == nil {
			t.Fatalf("%s must not be nil", name)
		}
	}
}

func TestTextErrors_WrapInvalidTodoText(t *testing.T) {
	if !errors.Is(ErrEmptyTodoText, ErrInvalidTodoText) {
		t.Fatal("ErrEmptyTodoText must wrap ErrInvalidTodoText")
	}
	if !errors.Is(ErrTodoTextTooLong, ErrInvalidTodoText) {
		t.Fatal("ErrTodoTextTooLong must wrap ErrInvalidTodoText")
	}
	if errors.Is(ErrEmptyTodoText, ErrTodoTextTooLong) {
		t.Fatal("text errors must stay distinguishable")
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("update todo 7: %w", ErrTodoNotFound)
	if !errors.Is(wrapped, ErrTodoNotFound) {
		t.Fatal("errors.Is must match wrapped ErrTodoNotFound")
	}

	wrapped2 := fmt.Errorf("create todo: %w", ErrEmptyTodoText)
	if !errors.Is(wrapped2, ErrInvalidTodoText) {
		t.Fatal("errors.Is must match double-wrapped ErrInvalidTodoText")
	}
}
