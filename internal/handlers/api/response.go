package api

import (
	"github.com/gofiber/fiber/v3"
)

// xrpcError returns an error response with a machine-readable kind and a
// human-readable message.
func xrpcError(c fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   kind,
		"message": message,
	})
}
