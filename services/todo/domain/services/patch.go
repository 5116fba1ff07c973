// Package services contains stateless domain services for the todo bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"errors"
	"fmt"

	"github.com/ghuser/todoapp/services/todo/domain"
	"github.com/ghuser/todoapp/services/todo/domain/models"
)

// BuildPatch turns the optional fields of an update request into a TodoPatch.
//
// Rules:
//   - completed, when present, is always applied.
//   - text, when present and non-blank after trimming, replaces the text.
//   - text that is present but blank is ignored; it is not an error.
//   - text longer than models.MaxTodoTextLength is rejected.
func BuildPatch(completed *bool, text *string) (models.TodoPatch, error) {
	var p models.TodoPatch

	if completed != nil {
		c := *completed
		p.Completed = &c
	}

	if text != nil {
		t, err := models.NewTodoText(*text)
		switch {
		case err == nil:
			p.Text = &t
		case errors.Is(err, domain.ErrEmptyTodoText):
			// blank replacement text leaves the current text in place
		default:
			return models.TodoPatch{}, fmt.Errorf("invalid text: %w", err)
		}
	}

	return p, nil
}
