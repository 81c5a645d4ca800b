package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"go.uber.org/zap"
)

// ErrorHandler renders errors that escape handlers in the response envelope.
// Internal error messages are only exposed in development.
func ErrorHandler(log *zap.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code != fiber.StatusInternalServerError {
			return response.Fail(c, code, fe.Message)
		}

		log.Error("Internal Server Error",
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
		)

		if development {
			return response.FailWithDetails(c, code, "", err.Error())
		}
		return response.InternalServerError(c, "")
	}
}
