package serverutils

import (
	"placement-engine-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Response[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    T                 `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string, fields map[string]string) *Response[any] {
	return &Response[any]{Success: false, Message: message, Errors: fields}
}

// ParamUUID parses a path parameter, reporting a malformed id as a validation failure.
func ParamUUID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		v := apperror.NewValidationErrors()
		v.Add("$."+name, "isInvalid")
		return uuid.Nil, v.Err()
	}
	return id, nil
}
