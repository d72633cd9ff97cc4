// Package apperror holds the error taxonomy shared by every lifecycle transition.
package apperror

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	Id     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Id)
}

func NotFound(entity string, id uuid.UUID) error {
	return &NotFoundError{Entity: entity, Id: id.String()}
}

// UnauthorisedError reports an actor lacking permission for the entity or action.
type UnauthorisedError struct {
	Message string
}

func (e *UnauthorisedError) Error() string {
	if e.Message == "" {
		return "unauthorised"
	}
	return "unauthorised: " + e.Message
}

func Unauthorised(message string) error {
	return &UnauthorisedError{Message: message}
}

// ValidationError carries field-level messages, keyed by a JSON-path style field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Window is the date range held by a conflicting entity. End is exclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// ConflictError reports an overlapping booking or lost bed, or an entity that has already
// completed the requested step.
type ConflictError struct {
	ConflictingId uuid.UUID
	Entity        string
	Window        *Window
	Message       string
}

func (e *ConflictError) Error() string {
	if e.Window != nil {
		return fmt.Sprintf("%s: %s %s occupies %s to %s", e.Message, e.Entity, e.ConflictingId,
			e.Window.Start.Format(time.DateOnly), e.Window.End.Format(time.DateOnly))
	}
	if e.ConflictingId != uuid.Nil {
		return fmt.Sprintf("%s: %s %s", e.Message, e.Entity, e.ConflictingId)
	}
	return e.Message
}

func Conflict(entity string, id uuid.UUID, message string) error {
	return &ConflictError{ConflictingId: id, Entity: entity, Message: message}
}

// GeneralValidationError reports a structural problem surfaced as a single message.
type GeneralValidationError struct {
	Message string
}

func (e *GeneralValidationError) Error() string {
	return e.Message
}

func GeneralValidation(message string) error {
	return &GeneralValidationError{Message: message}
}

// FatalError wraps an unexpected downstream failure. It aborts the surrounding transaction.
type FatalError struct {
	cause error
}

func (e *FatalError) Error() string {
	return "fatal: " + e.cause.Error()
}

func (e *FatalError) Unwrap() error {
	return e.cause
}

func Fatal(err error, message string) error {
	return &FatalError{cause: errors.Wrap(err, message)}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsUnauthorised(err error) bool {
	var target *UnauthorisedError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsGeneralValidation(err error) bool {
	var target *GeneralValidationError
	return errors.As(err, &target)
}

func IsFatal(err error) bool {
	var target *FatalError
	return errors.As(err, &target)
}
