package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lokita-bj/lokita-backend/internal/dto"
	"github.com/lokita-bj/lokita-backend/internal/middleware"
	"github.com/lokita-bj/lokita-backend/internal/services"
)

// AdminHandler serves the SUPER_ADMIN hospital approval workflow.
type AdminHandler struct {
	hospitals *services.HospitalService
}

func NewAdminHandler(hospitals *services.HospitalService) *AdminHandler {
	return &AdminHandler{hospitals: hospitals}
}

func (h *AdminHandler) ListHospitals(c *fiber.Ctx) error {
	hospitals, err := h.hospitals.ListAll()
	if err != nil {
		return internalError(c, "failed to list hospitals", err)
	}
	return c.JSON(hospitals)
}

func (h *AdminHandler) ApproveHospital(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Hôpital non trouvé",
		})
	}

	hospital, err := h.hospitals.Approve(middleware.CurrentUser(c), id, requestMeta(c))
	if err != nil {
		if errors.Is(err, services.ErrHospitalNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Hôpital non trouvé",
			})
		}
		return internalError(c, "failed to approve hospital", err)
	}
	return c.JSON(hospital)
}

func (h *AdminHandler) RejectHospital(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Hôpital non trouvé",
		})
	}

	if err := h.hospitals.Reject(middleware.CurrentUser(c), id, requestMeta(c)); err != nil {
		switch {
		case errors.Is(err, services.ErrHospitalNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Hôpital non trouvé",
			})
		case errors.Is(err, services.ErrHospitalHasAppointments):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Impossible de rejeter cet hôpital : rendez-vous actifs",
			})
		}
		return internalError(c, "failed to reject hospital", err)
	}

	return c.JSON(fiber.Map{"success": true})
}
