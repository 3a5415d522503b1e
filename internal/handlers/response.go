package handlers

import (
	"arthemis/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondList(c *fiber.Ctx, data interface{}, count int) error {
	return c.JSON(fiber.Map{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}

// ErrorHandler renders every error returned by a route as the error envelope.
// Server-side failures are logged with their cause.
func ErrorHandler(log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := middleware.StatusOf(err)
		if status >= fiber.StatusInternalServerError {
			log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   middleware.MessageOf(err),
		})
	}
}
