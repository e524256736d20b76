package booking

import (
	"errors"
	"fmt"
	"time"

	"gearbook-backend/internal/core/domain"
)

// Lifecycle guard errors. Both unwrap to ErrInvalidTransition so callers
// can classify them with errors.Is.
var (
	ErrDenialReasonRequired = fmt.Errorf("%w: denial requires a non-empty reason", domain.ErrInvalidTransition)
	ErrCancelAfterStart     = fmt.Errorf("%w: only staff may cancel after the range has started", domain.ErrInvalidTransition)
	ErrCancelNotOwner       = fmt.Errorf("%w: only the requester or staff may cancel", domain.ErrInvalidTransition)
)

// transitions is the closed reservation state machine. Anything not
// listed here is illegal. overdue -> completed covers a confirmed late
// return; the strike for it is issued before completion.
var transitions = map[domain.ReservationStatus][]domain.ReservationStatus{
	domain.StatusPending:  {domain.StatusApproved, domain.StatusDenied, domain.StatusCancelled},
	domain.StatusApproved: {domain.StatusActive, domain.StatusCancelled},
	domain.StatusActive:   {domain.StatusCompleted, domain.StatusOverdue},
	domain.StatusOverdue:  {domain.StatusCompleted},
}

// CanTransition reports whether from -> to is part of the state machine
func CanTransition(from, to domain.ReservationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionRequest carries the context a guard needs
type TransitionRequest struct {
	To     domain.ReservationStatus
	Actor  domain.Actor
	Now    time.Time
	Reason string // required for denial
}

// CheckTransition validates a requested transition against the state
// machine and its guards. It does not mutate the reservation; the
// service applies side effects only after this passes.
func CheckTransition(r domain.Reservation, req TransitionRequest) error {
	if !req.To.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, req.To)
	}
	if !CanTransition(r.Status, req.To) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, r.Status, req.To)
	}

	switch req.To {
	case domain.StatusDenied:
		if !req.Actor.IsAdmin() {
			return fmt.Errorf("%w: staff only", domain.ErrInvalidTransition)
		}
		if req.Reason == "" {
			return ErrDenialReasonRequired
		}
	case domain.StatusCancelled:
		started := !domain.Midnight(req.Now).Before(r.Window.Dates.Start)
		if started && !req.Actor.IsAdmin() {
			return ErrCancelAfterStart
		}
		if !started && !req.Actor.IsAdmin() && req.Actor.ID != r.RequesterID {
			return ErrCancelNotOwner
		}
	case domain.StatusApproved, domain.StatusCompleted:
		if !req.Actor.IsAdmin() {
			return fmt.Errorf("%w: staff only", domain.ErrInvalidTransition)
		}
	}
	return nil
}

// IsTransitionError reports whether err is any lifecycle guard failure
func IsTransitionError(err error) bool {
	return errors.Is(err, domain.ErrInvalidTransition)
}
