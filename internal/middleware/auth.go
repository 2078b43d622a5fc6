package middleware

import (
	"crypto/rsa"

	"github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/lokita-bj/lokita-backend/internal/dto"
)

// RequireAuth rejects requests without a valid RS256 bearer token. The signing
// algorithm is pinned so tokens signed with anything else are refused.
func RequireAuth(publicKey *rsa.PublicKey) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: jwtware.RS256,
			Key:    publicKey,
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
