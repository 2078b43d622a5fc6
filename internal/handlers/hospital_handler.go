package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lokita-bj/lokita-backend/internal/services"
)

type HospitalHandler struct {
	hospitals *services.HospitalService
}

func NewHospitalHandler(hospitals *services.HospitalService) *HospitalHandler {
	return &HospitalHandler{hospitals: hospitals}
}

// List returns approved hospitals with optional district/specialty/search filters.
func (h *HospitalHandler) List(c *fiber.Ctx) error {
	filter := services.HospitalFilter{
		District:    c.Query("district"),
		SpecialtyID: c.Query("specialtyId"),
		Search:      c.Query("search"),
	}

	hospitals, err := h.hospitals.ListApproved(filter)
	if err != nil {
		return internalError(c, "failed to list hospitals", err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"hospitals": hospitals,
	})
}

// ListSpecialties returns the specialty catalog.
func (h *HospitalHandler) ListSpecialties(c *fiber.Ctx) error {
	specialties, err := h.hospitals.ListSpecialties()
	if err != nil {
		return internalError(c, "failed to list specialties", err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"specialties": specialties,
	})
}
