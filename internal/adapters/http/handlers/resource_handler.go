package handlers

import (
	"errors"
	"time"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/adapters/persistence/repositories"
	"gearbook-backend/internal/core/domain"
	"gearbook-backend/internal/core/services"
	"gearbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// ResourceHandler handles catalog endpoints
type ResourceHandler struct {
	resourceRepo       repositories.ResourceRepository
	reservationService *services.ReservationService
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resourceRepo repositories.ResourceRepository, reservationService *services.ReservationService) *ResourceHandler {
	return &ResourceHandler{
		resourceRepo:       resourceRepo,
		reservationService: reservationService,
	}
}

// ============================================================
// GET /api/v1/resources — list bookable resources
// ============================================================
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	kind := c.Query("kind")
	includeInactive := c.Query("all") == "true"

	resources, err := h.resourceRepo.List(c.Context(), kind, !includeInactive)
	if err != nil {
		return response.InternalServerError(c, "Failed to list resources")
	}

	return response.Success(c, "Resources retrieved", fiber.Map{
		"resources": resources,
	})
}

// ============================================================
// GET /api/v1/resources/:id — one resource
// ============================================================
func (h *ResourceHandler) GetByID(c *fiber.Ctx) error {
	resource, err := h.resourceRepo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return response.NotFound(c, "Resource not found")
	}

	return response.Success(c, "Resource retrieved", fiber.Map{
		"resource": resource,
	})
}

// CreateResourceRequest represents create resource request
type CreateResourceRequest struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Granularity string `json:"granularity"`
	Department  string `json:"department,omitempty"`
}

// ============================================================
// POST /api/v1/resources — register a resource (admin)
// ============================================================
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	var req CreateResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" || req.Kind == "" || req.Granularity == "" {
		return response.BadRequest(c, "Name, kind and granularity are required")
	}

	kind := domain.ResourceKind(req.Kind)
	if kind != domain.KindEquipment && kind != domain.KindRoom {
		return response.BadRequest(c, "Kind must be equipment or room")
	}

	granularity := domain.Granularity(req.Granularity)
	if granularity != domain.GranularityDay && granularity != domain.GranularityMinute {
		return response.BadRequest(c, "Granularity must be day or minute")
	}

	resource := &models.Resource{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Kind:        req.Kind,
		Granularity: req.Granularity,
		Department:  req.Department,
		IsActive:    true,
	}

	if err := h.resourceRepo.Create(c.Context(), resource); err != nil {
		return response.InternalServerError(c, "Failed to create resource")
	}

	return response.Created(c, "Resource created", fiber.Map{
		"resource": resource,
	})
}

// SetActiveRequest toggles a resource in or out of the catalog
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// ============================================================
// PUT /api/v1/resources/:id/active — retire or restore a resource (admin)
// ============================================================
func (h *ResourceHandler) SetActive(c *fiber.Ctx) error {
	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Active == nil {
		return response.BadRequest(c, "active is required")
	}

	if err := h.resourceRepo.SetActive(c.Context(), c.Params("id"), *req.Active); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Resource updated", fiber.Map{
		"resource_id": c.Params("id"),
		"is_active":   *req.Active,
	})
}

// ============================================================
// GET /api/v1/resources/:id/availability — committed bookings in a window
// ============================================================
func (h *ResourceHandler) Availability(c *fiber.Ctx) error {
	start, end, err := parseDateWindow(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	reservations, err := h.reservationService.Availability(c.Context(), c.Params("id"), start, end)
	if err != nil {
		if errors.Is(err, services.ErrResourceNotFound) {
			return response.NotFound(c, "Resource not found")
		}
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Availability retrieved", fiber.Map{
		"resource_id":  c.Params("id"),
		"start_date":   start.Format(dateLayout),
		"end_date":     end.Format(dateLayout),
		"reservations": reservations,
	})
}

// ============================================================
// GET /api/v1/resources/:id/alternatives — free windows near a request
// ============================================================
func (h *ResourceHandler) Alternatives(c *fiber.Ctx) error {
	start, end, err := parseDateWindow(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	suggestions, err := h.reservationService.Alternatives(c.Context(), c.Params("id"), start, end)
	if err != nil {
		if errors.Is(err, services.ErrResourceNotFound) {
			return response.NotFound(c, "Resource not found")
		}
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Alternatives retrieved", fiber.Map{
		"resource_id": c.Params("id"),
		"suggestions": suggestions,
	})
}

// parseDateWindow reads the start/end query params shared by the
// availability and alternatives endpoints.
func parseDateWindow(c *fiber.Ctx) (time.Time, time.Time, error) {
	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start and end query params are required")
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "end must be YYYY-MM-DD")
	}
	return start, end, nil
}
