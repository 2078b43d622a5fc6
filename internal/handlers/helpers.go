package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/lokita-bj/lokita-backend/internal/dto"
	"github.com/lokita-bj/lokita-backend/internal/services"
)

func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

// internalError logs the failure with context and returns a generic message so
// internals never leak to the caller.
func internalError(c *fiber.Ctx, msg string, err error) error {
	slog.Error(msg, "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
