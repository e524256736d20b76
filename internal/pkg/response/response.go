package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gearbook-backend/internal/core/domain"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// ErrorWithDetails sends an error response carrying a payload, e.g. the
// conflicting reservations behind a 409
func ErrorWithDetails(c *fiber.Ctx, statusCode int, message string, details interface{}) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
		Details: details,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// UnprocessableEntity sends a 422 response
func UnprocessableEntity(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnprocessableEntity, message)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusTooManyRequests, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// FromDomainError maps engine errors onto HTTP statuses so handlers
// stay thin. Conflict and blacklist errors keep their payloads.
func FromDomainError(c *fiber.Ctx, err error) error {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		return ErrorWithDetails(c, fiber.StatusConflict, err.Error(), fiber.Map{
			"resource_id": conflictErr.ResourceID,
			"conflicts":   conflictErr.Conflicts,
		})
	}
	var blacklistErr *domain.BlacklistError
	if errors.As(err, &blacklistErr) {
		return ErrorWithDetails(c, fiber.StatusForbidden, err.Error(), fiber.Map{
			"subject_id":      blacklistErr.SubjectID,
			"strike_count":    blacklistErr.StrikeCount,
			"blacklist_until": blacklistErr.Until,
		})
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidRange):
		return BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return Error(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrPolicyViolation):
		return Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrBusy):
		return Error(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		return InternalServerError(c, "internal server error")
	}
}
