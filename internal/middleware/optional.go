package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lokita-bj/lokita-backend/internal/dto"
	"github.com/lokita-bj/lokita-backend/internal/models"
	"github.com/lokita-bj/lokita-backend/internal/services"
	"gorm.io/gorm"
)

// OptionalAuth resolves the requester once at the boundary: no bearer token or
// an unverifiable one means anonymous access, while a token that verifies but
// points at a missing user is rejected. Handlers read the result with
// CurrentUser; nil means anonymous.
func OptionalAuth(tokens *services.TokenService, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := services.ExtractBearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			// Unparsable token falls back to the anonymous view.
			return c.Next()
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return c.Next()
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}

		c.Locals(currentUserKey, &user)
		return c.Next()
	}
}
