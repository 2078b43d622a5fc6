package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/lokita-bj/lokita-backend/internal/handlers"
	"github.com/lokita-bj/lokita-backend/internal/middleware"
	"github.com/lokita-bj/lokita-backend/internal/models"
	"github.com/lokita-bj/lokita-backend/internal/services"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	db *gorm.DB,
	tokens *services.TokenService,
	authHandler *handlers.AuthHandler,
	appointmentHandler *handlers.AppointmentHandler,
	hospitalHandler *handlers.HospitalHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Public catalog
	api.Get("/hospitals", hospitalHandler.List)
	api.Get("/specialties", hospitalHandler.ListSpecialties)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/send-otp", authHandler.SendOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)

	// Appointments — anonymous or authenticated; the requester is resolved
	// once here and handlers decide what anonymity allows.
	appointments := api.Group("/appointments", middleware.OptionalAuth(tokens, db))
	appointments.Post("/", appointmentHandler.Create)
	appointments.Get("/", appointmentHandler.ListMine)
	appointments.Get("/:id", appointmentHandler.Get)

	// Hospital staff
	secretary := api.Group("/secretary",
		middleware.RequireAuth(tokens.PublicKey()),
		middleware.RequireRole(db, models.RoleSecretary))
	secretary.Get("/appointments", appointmentHandler.ListForSecretary)
	secretary.Post("/appointments/:id/confirm", appointmentHandler.Confirm)
	secretary.Post("/appointments/:id/reject", appointmentHandler.Reject)

	doctor := api.Group("/doctor",
		middleware.RequireAuth(tokens.PublicKey()),
		middleware.RequireRole(db, models.RoleDoctor))
	doctor.Get("/appointments/today", appointmentHandler.ListTodayForDoctor)
	doctor.Post("/appointments/:id/completed", appointmentHandler.Complete)

	// Super-admin
	admin := api.Group("/admin",
		middleware.RequireAuth(tokens.PublicKey()),
		middleware.RequireRole(db, models.RoleSuperAdmin))
	admin.Get("/hospitals", adminHandler.ListHospitals)
	admin.Post("/hospitals/:id/approve", adminHandler.ApproveHospital)
	admin.Post("/hospitals/:id/reject", adminHandler.RejectHospital)
}
