package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lokita-bj/lokita-backend/internal/dto"
	"github.com/lokita-bj/lokita-backend/internal/phone"
	"github.com/lokita-bj/lokita-backend/internal/services"
)

type AuthHandler struct {
	otpService *services.OTPService
}

func NewAuthHandler(otpService *services.OTPService) *AuthHandler {
	return &AuthHandler{otpService: otpService}
}

func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req dto.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	expiresIn, err := h.otpService.RequestCode(req.PhoneNumber, requestMeta(c))
	if err != nil {
		if errors.Is(err, phone.ErrInvalidPhone) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Numéro de téléphone béninois invalide",
			})
		}
		return internalError(c, "failed to send OTP", err)
	}

	return c.JSON(dto.SendOTPResponse{
		Success:   true,
		Message:   "Code de vérification envoyé par SMS",
		ExpiresIn: expiresIn,
	})
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.PhoneNumber == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Numéro de téléphone et code requis",
		})
	}

	token, user, err := h.otpService.VerifyCode(req.PhoneNumber, req.Code, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, phone.ErrInvalidPhone):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Numéro de téléphone invalide",
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Utilisateur non trouvé",
			})
		case errors.Is(err, services.ErrTooManyAttempts):
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Nombre maximum de tentatives atteint",
			})
		case errors.Is(err, services.ErrCodeInvalid):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Code invalide ou expiré",
			})
		}
		return internalError(c, "failed to verify OTP", err)
	}

	return c.JSON(dto.VerifyOTPResponse{
		Success: true,
		Token:   token,
		User: dto.UserResponse{
			ID:              user.ID,
			PhoneNumber:     user.PhoneNumber,
			FirstName:       user.FirstName,
			LastName:        user.LastName,
			Role:            user.Role,
			IsPhoneVerified: user.IsPhoneVerified,
		},
	})
}
