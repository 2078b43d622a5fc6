package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lokita-bj/lokita-backend/internal/dto"
	"github.com/lokita-bj/lokita-backend/internal/middleware"
	"github.com/lokita-bj/lokita-backend/internal/phone"
	"github.com/lokita-bj/lokita-backend/internal/services"
)

type AppointmentHandler struct {
	appointments *services.AppointmentService
}

func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// Create books an appointment for an anonymous or authenticated patient.
func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	appointment, err := h.appointments.Create(&req, middleware.CurrentUser(c), requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields),
			errors.Is(err, services.ErrInvalidSlot),
			errors.Is(err, services.ErrInvalidDate),
			errors.Is(err, phone.ErrInvalidPhone):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrHospitalNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Hôpital non trouvé",
			})
		case errors.Is(err, services.ErrTooManyPending):
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Vous avez trop de demandes de rendez-vous en attente",
			})
		}
		return internalError(c, "failed to create appointment", err)
	}

	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// ListMine returns the authenticated patient's appointments.
func (h *AppointmentHandler) ListMine(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	appointments, err := h.appointments.ListForPatient(user.ID)
	if err != nil {
		return internalError(c, "failed to list appointments", err)
	}
	return c.JSON(appointments)
}

// Get returns a single appointment. Anonymous access is allowed; a valid token
// with insufficient rights is rejected.
func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Rendez-vous non trouvé",
		})
	}

	appointment, err := h.appointments.GetByID(id, middleware.CurrentUser(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAppointmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Rendez-vous non trouvé",
			})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Non autorisé à voir ce rendez-vous",
			})
		}
		return internalError(c, "failed to load appointment", err)
	}
	return c.JSON(appointment)
}

// ListForSecretary returns the open queue of the secretary's hospital.
func (h *AppointmentHandler) ListForSecretary(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.HospitalID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Aucun hôpital associé",
		})
	}

	appointments, err := h.appointments.ListForSecretary(*user.HospitalID)
	if err != nil {
		return internalError(c, "failed to list appointments", err)
	}
	return c.JSON(appointments)
}

// Confirm sets the exact date of a pending appointment.
func (h *AppointmentHandler) Confirm(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Rendez-vous non trouvé",
		})
	}

	var req dto.ConfirmAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	appointment, err := h.appointments.Confirm(middleware.CurrentUser(c), id, req.ConfirmedDate, requestMeta(c))
	if err != nil {
		return h.lifecycleError(c, err, "failed to confirm appointment")
	}
	return c.JSON(appointment)
}

// Reject cancels a pending or confirmed appointment.
func (h *AppointmentHandler) Reject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Rendez-vous non trouvé",
		})
	}

	appointment, err := h.appointments.Reject(middleware.CurrentUser(c), id, requestMeta(c))
	if err != nil {
		return h.lifecycleError(c, err, "failed to reject appointment")
	}
	return c.JSON(appointment)
}

// ListTodayForDoctor returns today's confirmed schedule.
func (h *AppointmentHandler) ListTodayForDoctor(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.HospitalID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Aucun hôpital associé",
		})
	}

	appointments, err := h.appointments.ListTodayForDoctor(*user.HospitalID)
	if err != nil {
		return internalError(c, "failed to list today's appointments", err)
	}
	return c.JSON(appointments)
}

// Complete marks a consultation as done.
func (h *AppointmentHandler) Complete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Rendez-vous non trouvé",
		})
	}

	appointment, err := h.appointments.Complete(middleware.CurrentUser(c), id, requestMeta(c))
	if err != nil {
		return h.lifecycleError(c, err, "failed to complete appointment")
	}
	return c.JSON(appointment)
}

func (h *AppointmentHandler) lifecycleError(c *fiber.Ctx, err error, logMsg string) error {
	switch {
	case errors.Is(err, services.ErrMissingFields), errors.Is(err, services.ErrInvalidDate):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrAppointmentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Rendez-vous non trouvé",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Vous ne pouvez pas modifier ce rendez-vous",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Transition de statut non autorisée",
		})
	}
	return internalError(c, logMsg, err)
}
