package routes

import (
	"time"

	"gearbook-backend/internal/adapters/http/handlers"
	"gearbook-backend/internal/adapters/http/middleware"
	"gearbook-backend/internal/adapters/persistence/repositories"
	"gearbook-backend/internal/config"
	"gearbook-backend/internal/core/services"
	"gearbook-backend/internal/pkg/locker"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, resourceLocker locker.Locker, notifier services.Notifier) {
	// Initialize repositories
	resourceRepo := repositories.NewResourceRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	strikeRepo := repositories.NewStrikeRepository(db)

	// Initialize services
	strikeService := services.NewStrikeService(strikeRepo, notifier)
	reservationService := services.NewReservationService(
		reservationRepo,
		resourceRepo,
		strikeService,
		resourceLocker,
		notifier,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	resourceHandler := handlers.NewResourceHandler(resourceRepo, reservationService)
	reservationHandler := handlers.NewReservationHandler(reservationService, strikeService)
	adminHandler := handlers.NewAdminHandler(reservationService, strikeService, reservationRepo)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group: every route below it carries an actor identity
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)
	apiV1.Use(middleware.ActorMiddleware())

	// Catalog routes
	resourceRoutes := apiV1.Group("/resources")
	setupResourceRoutes(resourceRoutes, resourceHandler)

	// Reservation routes
	reservationRoutes := apiV1.Group("/reservations")
	setupReservationRoutes(reservationRoutes, reservationHandler)

	// Eligibility pre-check; standing changes rarely, short private cache
	apiV1.Get("/eligibility/:subject_id", middleware.PrivateCacheHeaders(30*time.Second), reservationHandler.Eligibility)

	// Admin routes (staff/admin only)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)
}

// setupResourceRoutes configures catalog routes
func setupResourceRoutes(router fiber.Router, handler *handlers.ResourceHandler) {
	router.Get("/", middleware.CatalogCache(), handler.List)
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Get("/:id", middleware.CatalogCache(), handler.GetByID)
	router.Put("/:id/active", middleware.AdminOnly(), handler.SetActive)

	// Availability must never serve stale bookings
	router.Get("/:id/availability", middleware.NoCacheHeaders(), handler.Availability)
	router.Get("/:id/alternatives", middleware.NoCacheHeaders(), handler.Alternatives)
}

// setupReservationRoutes configures requester-facing reservation routes
func setupReservationRoutes(router fiber.Router, handler *handlers.ReservationHandler) {
	router.Post("/", middleware.SubmitRateLimiter(), handler.Submit)
	router.Post("/recurring", middleware.SubmitRateLimiter(), handler.SubmitRecurring)
	router.Get("/my", middleware.NoCacheHeaders(), handler.GetMy)
	router.Get("/group/:group_id", handler.GetGroup)
	router.Get("/:id", handler.GetByID)
	router.Post("/:id/cancel", handler.Cancel)
}

// setupAdminRoutes configures staff-side routes
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	// Reservation decisions
	router.Get("/reservations", middleware.NoCacheHeaders(), handler.ListReservations)
	router.Get("/resources/:id/reservations", middleware.NoCacheHeaders(), handler.ResourceSchedule)
	router.Post("/reservations/:id/approve", handler.Approve)
	router.Post("/reservations/:id/deny", handler.Deny)
	router.Post("/reservations/:id/return", handler.ConfirmReturn)

	// Strike management
	router.Post("/strikes", handler.IssueStrike)
	router.Post("/strikes/reset", handler.ResetStrikes)
	router.Post("/strikes/:id/revoke", handler.RevokeStrike)
	router.Get("/strikes/flagged", handler.ListFlagged)
	router.Get("/strikes/subject/:id", handler.SubjectStrikes)
}
