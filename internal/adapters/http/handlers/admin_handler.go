package handlers

import (
	"errors"

	"gearbook-backend/internal/adapters/http/middleware"
	"gearbook-backend/internal/adapters/persistence/repositories"
	"gearbook-backend/internal/core/services"
	"gearbook-backend/internal/pkg/pagination"
	"gearbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles staff-side reservation and strike endpoints
type AdminHandler struct {
	reservationService *services.ReservationService
	strikeService      *services.StrikeService
	reservationRepo    repositories.ReservationRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	reservationService *services.ReservationService,
	strikeService *services.StrikeService,
	reservationRepo repositories.ReservationRepository,
) *AdminHandler {
	return &AdminHandler{
		reservationService: reservationService,
		strikeService:      strikeService,
		reservationRepo:    reservationRepo,
	}
}

// ============================================================
// GET /api/v1/admin/reservations — paginated overview
// ============================================================
func (h *AdminHandler) ListReservations(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var statuses []string
	if status := c.Query("status"); status != "" {
		statuses = []string{status}
	}
	resourceID := c.Query("resource_id")

	reservations, total, err := h.reservationRepo.ListAll(c.Context(), statuses, resourceID, params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reservations")
	}

	return response.Success(c, "Reservations retrieved", pagination.NewResponse(reservations, params, total))
}

// ============================================================
// GET /api/v1/admin/resources/:id/reservations — one resource's schedule
// ============================================================
func (h *AdminHandler) ResourceSchedule(c *fiber.Ctx) error {
	var statuses []string
	if status := c.Query("status"); status != "" {
		statuses = []string{status}
	}

	reservations, err := h.reservationService.ListForResource(c.Context(), c.Params("id"), statuses)
	if err != nil {
		return response.InternalServerError(c, "Failed to list resource reservations")
	}

	return response.Success(c, "Resource reservations retrieved", fiber.Map{
		"resource_id":  c.Params("id"),
		"reservations": reservations,
	})
}

// ============================================================
// POST /api/v1/admin/reservations/:id/approve — approve a request
// ============================================================
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	result, err := h.reservationService.Approve(c.Context(), c.Params("id"), actor)
	if err != nil {
		if errors.Is(err, services.ErrReservationNotFound) {
			return response.NotFound(c, "Reservation not found")
		}
		return response.FromDomainError(c, err)
	}
	return response.Success(c, "Reservation approved", result)
}

// DecisionRequest carries the optional reason for a decision
type DecisionRequest struct {
	Reason string `json:"reason"`
}

// ============================================================
// POST /api/v1/admin/reservations/:id/deny — deny with a reason
// ============================================================
func (h *AdminHandler) Deny(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Reason == "" {
		return response.BadRequest(c, "Reason is required")
	}

	result, err := h.reservationService.Deny(c.Context(), c.Params("id"), actor, req.Reason)
	if err != nil {
		if errors.Is(err, services.ErrReservationNotFound) {
			return response.NotFound(c, "Reservation not found")
		}
		return response.FromDomainError(c, err)
	}
	return response.Success(c, "Reservation denied", result)
}

// ============================================================
// POST /api/v1/admin/reservations/:id/return — confirm handback
// ============================================================
func (h *AdminHandler) ConfirmReturn(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	result, err := h.reservationService.ConfirmReturn(c.Context(), c.Params("id"), actor)
	if err != nil {
		if errors.Is(err, services.ErrReservationNotFound) {
			return response.NotFound(c, "Reservation not found")
		}
		return response.FromDomainError(c, err)
	}
	return response.Success(c, "Return confirmed", result)
}

// ============================================================
// POST /api/v1/admin/strikes — issue a manual strike
// ============================================================
func (h *AdminHandler) IssueStrike(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var input services.IssueStrikeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.SubjectID == "" {
		return response.BadRequest(c, "subject_id is required")
	}

	record, err := h.strikeService.Issue(c.Context(), &input, &actor.ID)
	if err != nil {
		return response.FromDomainError(c, err)
	}
	return response.Created(c, "Strike issued", record)
}

// ============================================================
// POST /api/v1/admin/strikes/:id/revoke — revoke one strike
// ============================================================
func (h *AdminHandler) RevokeStrike(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	state, err := h.strikeService.Revoke(c.Context(), c.Params("id"), actor, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStrikeNotFound):
			return response.NotFound(c, "Strike not found")
		case errors.Is(err, services.ErrStrikeAlreadyRevoked):
			return response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, services.ErrRevokeReasonRequired):
			return response.BadRequest(c, err.Error())
		default:
			return response.FromDomainError(c, err)
		}
	}
	return response.Success(c, "Strike revoked", state)
}

// ResetStrikesRequest identifies the subject to clear
type ResetStrikesRequest struct {
	SubjectID string `json:"subject_id"` // empty resets every subject
	Reason    string `json:"reason"`
}

// ============================================================
// POST /api/v1/admin/strikes/reset — bulk revoke active strikes
// ============================================================
func (h *AdminHandler) ResetStrikes(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var req ResetStrikesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var result *services.ResetResult
	var err error
	if req.SubjectID != "" {
		result, err = h.strikeService.ResetSubject(c.Context(), req.SubjectID, actor, req.Reason)
	} else {
		result, err = h.strikeService.ResetAll(c.Context(), actor, req.Reason)
	}
	if err != nil {
		if errors.Is(err, services.ErrRevokeReasonRequired) {
			return response.BadRequest(c, err.Error())
		}
		return response.FromDomainError(c, err)
	}
	return response.Success(c, "Strikes reset", result)
}

// ============================================================
// GET /api/v1/admin/strikes/flagged — currently restricted subjects
// ============================================================
func (h *AdminHandler) ListFlagged(c *fiber.Ctx) error {
	flagged, err := h.strikeService.ListFlagged(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list flagged subjects")
	}
	return response.Success(c, "Flagged subjects retrieved", fiber.Map{
		"subjects": flagged,
	})
}

// ============================================================
// GET /api/v1/admin/strikes/subject/:id — standing plus history
// ============================================================
func (h *AdminHandler) SubjectStrikes(c *fiber.Ctx) error {
	subjectID := c.Params("id")
	includeRevoked := c.Query("include_revoked") == "true"

	state, err := h.strikeService.Status(c.Context(), subjectID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get subject standing")
	}

	history, err := h.strikeService.History(c.Context(), subjectID, includeRevoked)
	if err != nil {
		return response.InternalServerError(c, "Failed to get strike history")
	}

	return response.Success(c, "Subject strikes retrieved", fiber.Map{
		"state":   state,
		"history": history,
	})
}
