package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Conflict and PolicyViolation are expected user-facing
// outcomes; InvalidTransition and NotFound indicate caller misuse.
var (
	ErrInvalidRange      = errors.New("invalid range")
	ErrConflict          = errors.New("reservation conflict")
	ErrInvalidTransition = errors.New("invalid reservation transition")
	ErrPolicyViolation   = errors.New("subject is currently restricted")
	ErrNotFound          = errors.New("not found")
	ErrBusy              = errors.New("resource busy, try again")
)

// ConflictError carries the reservations that block a candidate range
type ConflictError struct {
	ResourceID string
	Conflicts  []Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %s already reserved for the requested period (%d conflicting reservations)",
		e.ResourceID, len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// BlacklistError reports why a subject may not book right now
type BlacklistError struct {
	SubjectID   string
	StrikeCount int
	Until       *time.Time
}

func (e *BlacklistError) Error() string {
	if e.Until != nil {
		return fmt.Sprintf("subject %s restricted until %s (%d active strikes)",
			e.SubjectID, e.Until.Format("2006-01-02"), e.StrikeCount)
	}
	return fmt.Sprintf("subject %s restricted (%d active strikes)", e.SubjectID, e.StrikeCount)
}

func (e *BlacklistError) Unwrap() error {
	return ErrPolicyViolation
}
