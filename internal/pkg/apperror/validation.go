package apperror

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// ValidationErrors accumulates field errors so every guard of a transition runs before
// anything is mutated.
type ValidationErrors struct {
	fields map[string]string
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{fields: make(map[string]string)}
}

// Add records a message for field. The first message for a field wins.
func (v *ValidationErrors) Add(field, message string) {
	if _, exists := v.fields[field]; exists {
		return
	}
	v.fields[field] = message
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.fields) > 0
}

// Err returns nil when nothing was added, otherwise a *ValidationError.
func (v *ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	fields := make(map[string]string, len(v.fields))
	for k, msg := range v.fields {
		fields[k] = msg
	}
	return &ValidationError{Fields: fields}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs the struct's `validate` tags and folds failures into v.
func (v *ValidationErrors) ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		v.Add(fieldPath(fe.Field()), messageFor(fe.Tag()))
	}
	return nil
}

func fieldPath(field string) string {
	if field == "" {
		return "$"
	}
	return "$." + strings.ToLower(field[:1]) + field[1:]
}

func messageFor(tag string) string {
	switch tag {
	case "required":
		return "empty"
	case "min", "gte":
		return "isInvalid"
	default:
		return tag
	}
}
