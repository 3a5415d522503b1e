package middleware

import (
	"errors"

	"arthemis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StatusOf maps an error returned by a handler to its HTTP status.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch services.KindOf(err) {
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindUnauthorized, services.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case services.KindValidation, services.KindConflict, services.KindInvalidState:
		return fiber.StatusBadRequest
	case services.KindUpstream:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// MessageOf is the client-facing message of err. Unclassified errors never
// leak their text.
func MessageOf(err error) string {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	var se *services.Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return "Server Error"
}
