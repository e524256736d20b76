package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gearbook-backend/internal/core/domain"
)

var (
	admin     = domain.Actor{ID: "staff-1", Role: domain.RoleStaff}
	requester = domain.Actor{ID: "stu-1", Role: domain.RoleStudent}
	stranger  = domain.Actor{ID: "stu-2", Role: domain.RoleStudent}
)

func pendingReservation() domain.Reservation {
	return domain.Reservation{
		ID:          "res-1",
		ResourceID:  "cam-1",
		RequesterID: requester.ID,
		Status:      domain.StatusPending,
		Window:      domain.Window{Dates: domain.DateRange{Start: date(2025, 5, 12), End: date(2025, 5, 14)}},
	}
}

func TestTransitionTable(t *testing.T) {
	legal := []struct{ from, to domain.ReservationStatus }{
		{domain.StatusPending, domain.StatusApproved},
		{domain.StatusPending, domain.StatusDenied},
		{domain.StatusPending, domain.StatusCancelled},
		{domain.StatusApproved, domain.StatusActive},
		{domain.StatusApproved, domain.StatusCancelled},
		{domain.StatusActive, domain.StatusCompleted},
		{domain.StatusActive, domain.StatusOverdue},
		{domain.StatusOverdue, domain.StatusCompleted},
	}
	for _, tc := range legal {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s must be legal", tc.from, tc.to)
	}

	illegal := []struct{ from, to domain.ReservationStatus }{
		{domain.StatusPending, domain.StatusActive},
		{domain.StatusPending, domain.StatusCompleted},
		{domain.StatusApproved, domain.StatusDenied},
		{domain.StatusDenied, domain.StatusApproved},
		{domain.StatusCancelled, domain.StatusPending},
		{domain.StatusCompleted, domain.StatusActive},
		{domain.StatusOverdue, domain.StatusCancelled},
		{domain.StatusActive, domain.StatusApproved},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s must be illegal", tc.from, tc.to)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []domain.ReservationStatus{domain.StatusDenied, domain.StatusCancelled, domain.StatusCompleted} {
		for _, to := range []domain.ReservationStatus{
			domain.StatusPending, domain.StatusApproved, domain.StatusDenied, domain.StatusCancelled,
			domain.StatusActive, domain.StatusCompleted, domain.StatusOverdue,
		} {
			assert.False(t, CanTransition(terminal, to), "terminal %s must not transition to %s", terminal, to)
		}
	}
}

func TestDenyRequiresReason(t *testing.T) {
	r := pendingReservation()

	err := CheckTransition(r, TransitionRequest{To: domain.StatusDenied, Actor: admin, Now: date(2025, 5, 1)})
	assert.ErrorIs(t, err, ErrDenialReasonRequired)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	err = CheckTransition(r, TransitionRequest{To: domain.StatusDenied, Actor: admin, Now: date(2025, 5, 1), Reason: "maintenance"})
	assert.NoError(t, err)

	// Denial is a staff decision regardless of reason
	err = CheckTransition(r, TransitionRequest{To: domain.StatusDenied, Actor: requester, Now: date(2025, 5, 1), Reason: "changed my mind"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelBeforeStart(t *testing.T) {
	r := pendingReservation()
	before := date(2025, 5, 10)

	assert.NoError(t, CheckTransition(r, TransitionRequest{To: domain.StatusCancelled, Actor: requester, Now: before}))
	assert.NoError(t, CheckTransition(r, TransitionRequest{To: domain.StatusCancelled, Actor: admin, Now: before}))
	assert.ErrorIs(t,
		CheckTransition(r, TransitionRequest{To: domain.StatusCancelled, Actor: stranger, Now: before}),
		ErrCancelNotOwner)
}

func TestCancelAfterStartIsAdminOnly(t *testing.T) {
	r := pendingReservation()
	r.Status = domain.StatusApproved
	onStart := date(2025, 5, 12)

	assert.ErrorIs(t,
		CheckTransition(r, TransitionRequest{To: domain.StatusCancelled, Actor: requester, Now: onStart}),
		ErrCancelAfterStart)
	assert.NoError(t, CheckTransition(r, TransitionRequest{To: domain.StatusCancelled, Actor: admin, Now: onStart}))
}

func TestApproveAndCompleteAreStaffOnly(t *testing.T) {
	r := pendingReservation()
	err := CheckTransition(r, TransitionRequest{To: domain.StatusApproved, Actor: requester, Now: date(2025, 5, 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	r.Status = domain.StatusActive
	err = CheckTransition(r, TransitionRequest{To: domain.StatusCompleted, Actor: requester, Now: date(2025, 5, 14)})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUnknownStatusRejected(t *testing.T) {
	err := CheckTransition(pendingReservation(), TransitionRequest{To: "archived", Actor: admin, Now: date(2025, 5, 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
