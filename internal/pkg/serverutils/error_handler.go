package serverutils

import (
	"errors"

	"store-locator-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const module = "HTTP"

// ErrorHandler maps returned errors to the response envelope. A *fiber.Error
// keeps its code and message unless it is a 500; anything else becomes a
// generic 500 with the detail logged.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		if msg, ok := validationMessage(err); ok {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, msg))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code != fiber.StatusInternalServerError {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		log.Error(module, "Unhandled error", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}

// ErrorHandlerMiddleware applies ErrorHandler inside the middleware chain so
// errors are rendered before outer middleware (tracing) sees the response.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := ErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}
