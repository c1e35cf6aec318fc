package handlers

import (
	"errors"

	"orderdesk/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(APIResponse{Success: true, Message: message, Data: data})
}

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{Success: false, Message: message})
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindInvalidState:
		return fiber.StatusBadRequest
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err. Service errors keep their message; anything else is
// logged and reported with fallback.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return failure(c, statusFor(svcErr.Kind), svcErr.Message)
	}
	logger.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	return failure(c, fiber.StatusInternalServerError, fallback)
}
