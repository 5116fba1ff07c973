// Package validator decodes JSON request bodies and checks them with
// go-playground/validator tags.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so messages match the wire shape.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors maps each failing field to a readable message.
// Errors other than validator.ValidationErrors yield an empty map.
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = formatFieldError(e)
	}
	return errs
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

// Messager is implemented by request DTOs that want a specific public
// message when validation fails instead of the generic one.
type Messager interface {
	ValidationMessage() string
}

// MsgValidationFailed is the default message for a DTO that fails validation.
const MsgValidationFailed = "Validation failed"

// DecodeRequest decodes the JSON body into T, validates it and writes the
// 400 envelope when either step fails. The body must hold at most one JSON
// value. An empty body or a JSON null decodes as the zero T, so "required"
// tags decide whether that is acceptable. The per-field failures are logged
// at debug level; the client only sees the DTO's public message.
func DecodeRequest[T any](w http.ResponseWriter, r *http.Request, log logger.Logger) (*T, bool) {
	var req T
	if err := decodeJSON(r.Body, &req); err != nil {
		log.DebugContext(r.Context(), "request body rejected", "error", err)
		httpx.Fail(w, http.StatusBadRequest, httpx.MsgInvalidJSON)
		return nil, false
	}
	if err := Validate(&req); err != nil {
		log.DebugContext(r.Context(), "request validation failed", "fields", FormatValidationErrors(err))
		msg := MsgValidationFailed
		if m, ok := any(&req).(Messager); ok {
			msg = m.ValidationMessage()
		}
		httpx.Fail(w, http.StatusBadRequest, msg)
		return nil, false
	}
	return &req, true
}

func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
