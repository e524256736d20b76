package handlers

import (
	"errors"
	"time"

	"gearbook-backend/internal/adapters/http/middleware"
	"gearbook-backend/internal/core/services"
	"gearbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReservationHandler handles requester-facing reservation endpoints
type ReservationHandler struct {
	reservationService *services.ReservationService
	strikeService      *services.StrikeService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService *services.ReservationService, strikeService *services.StrikeService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		strikeService:      strikeService,
	}
}

// ============================================================
// POST /api/v1/reservations — submit a reservation request
// ============================================================
func (h *ReservationHandler) Submit(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var input services.SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.ResourceID == "" || input.StartDate == "" || input.EndDate == "" {
		return response.BadRequest(c, "resource_id, start_date and end_date are required")
	}

	result, err := h.reservationService.Submit(c.Context(), &input, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrResourceNotFound):
			return response.NotFound(c, "Resource not found")
		case errors.Is(err, services.ErrResourceInactive):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrSlotRequired), errors.Is(err, services.ErrSlotNotAllowed):
			return response.BadRequest(c, err.Error())
		default:
			return response.FromDomainError(c, err)
		}
	}
	return response.Created(c, "Reservation submitted", result)
}

// ============================================================
// POST /api/v1/reservations/recurring — submit a recurring series
// ============================================================
func (h *ReservationHandler) SubmitRecurring(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var input services.RecurringInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.ResourceID == "" || input.StartDate == "" || input.EndDate == "" {
		return response.BadRequest(c, "resource_id, start_date and end_date are required")
	}
	if input.Recurrence.Type == "" {
		return response.BadRequest(c, "recurrence.type is required")
	}

	result, err := h.reservationService.SubmitRecurring(c.Context(), &input, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrResourceNotFound):
			return response.NotFound(c, "Resource not found")
		case errors.Is(err, services.ErrResourceInactive):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrSlotRequired), errors.Is(err, services.ErrSlotNotAllowed):
			return response.BadRequest(c, err.Error())
		default:
			return response.FromDomainError(c, err)
		}
	}
	return response.Created(c, "Recurring series processed", result)
}

// ============================================================
// GET /api/v1/reservations/my — my reservations
// ============================================================
func (h *ReservationHandler) GetMy(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var statuses []string
	if status := c.Query("status"); status != "" {
		statuses = []string{status}
	}

	reservations, err := h.reservationService.ListMine(c.Context(), actor, statuses)
	if err != nil {
		return response.InternalServerError(c, "Failed to get reservations")
	}
	return response.Success(c, "Reservations retrieved", reservations)
}

// ============================================================
// GET /api/v1/reservations/group/:group_id — a recurring series
// ============================================================
func (h *ReservationHandler) GetGroup(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	records, err := h.reservationService.ListGroup(c.Context(), c.Params("group_id"), actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			return response.NotFound(c, "Recurring series not found")
		case errors.Is(err, services.ErrNotOwner):
			return response.Forbidden(c, err.Error())
		default:
			return response.FromDomainError(c, err)
		}
	}
	return response.Success(c, "Recurring series retrieved", fiber.Map{
		"group_id":     c.Params("group_id"),
		"reservations": records,
	})
}

// ============================================================
// GET /api/v1/reservations/:id — one reservation
// ============================================================
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	result, err := h.reservationService.GetByID(c.Context(), c.Params("id"), actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			return response.NotFound(c, "Reservation not found")
		case errors.Is(err, services.ErrNotOwner):
			return response.Forbidden(c, err.Error())
		default:
			return response.FromDomainError(c, err)
		}
	}
	return response.Success(c, "Reservation retrieved", result)
}

// ============================================================
// POST /api/v1/reservations/:id/cancel — withdraw a reservation
// ============================================================
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	result, err := h.reservationService.Cancel(c.Context(), c.Params("id"), actor)
	if err != nil {
		if errors.Is(err, services.ErrReservationNotFound) {
			return response.NotFound(c, "Reservation not found")
		}
		return response.FromDomainError(c, err)
	}
	return response.Success(c, "Reservation cancelled", result)
}

// ============================================================
// GET /api/v1/eligibility/:subject_id — booking pre-check
// ============================================================
func (h *ReservationHandler) Eligibility(c *fiber.Ctx) error {
	subjectID := c.Params("subject_id")

	state, err := h.strikeService.Status(c.Context(), subjectID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get eligibility")
	}

	committed, err := h.reservationService.CommittedCount(c.Context(), subjectID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get eligibility")
	}

	eligible := h.strikeService.AssertEligible(c.Context(), subjectID, time.Now()) == nil
	return response.Success(c, "Eligibility retrieved", fiber.Map{
		"subject_id":      subjectID,
		"eligible":        eligible,
		"strike_count":    state.StrikeCount,
		"blacklist_until": state.BlacklistUntil,
		"committed_count": committed,
	})
}
