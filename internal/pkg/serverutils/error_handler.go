package serverutils

import (
	"errors"

	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const moduleHTTP = "HTTP"

// ErrorHandlerMiddleware turns errors returned by handlers into JSON responses.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status, body := mapError(err)
		if status >= fiber.StatusInternalServerError {
			log.Error(moduleHTTP, "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}
		return ctx.Status(status).JSON(body)
	}
}

func mapError(err error) (int, *Response[any]) {
	var (
		validationErr *apperror.ValidationError
		conflictErr   *apperror.ConflictError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, ErrorResponse("There is a problem with your request", validationErr.Fields)
	case errors.As(err, &conflictErr):
		return fiber.StatusConflict, ErrorResponse(conflictErr.Error(), nil)
	case apperror.IsGeneralValidation(err):
		return fiber.StatusBadRequest, ErrorResponse(err.Error(), nil)
	case apperror.IsNotFound(err):
		return fiber.StatusNotFound, ErrorResponse(err.Error(), nil)
	case apperror.IsUnauthorised(err):
		return fiber.StatusForbidden, ErrorResponse(err.Error(), nil)
	case errors.As(err, &fiberErr):
		return fiberErr.Code, ErrorResponse(fiberErr.Message, nil)
	default:
		return fiber.StatusInternalServerError, ErrorResponse("Internal server error", nil)
	}
}
