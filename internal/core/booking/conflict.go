// Package booking holds the pure reservation engine: conflict detection,
// weekend extension, recurrence expansion, lifecycle rules and alternative
// date suggestion. Everything here is stateless logic over snapshots the
// caller supplies; no I/O happens in this package.
package booking

import "gearbook-backend/internal/core/domain"

// ConflictFilter narrows which existing reservations a check considers.
type ConflictFilter struct {
	// Statuses to treat as blocking. Empty means the default blocking
	// set: pending, approved, active.
	Statuses []domain.ReservationStatus
	// ExcludeID skips one reservation (the one being decided on).
	ExcludeID string
}

// CommittedOnly considers only reservations that actually hold the
// resource (approved/active). Used at submission time so pending
// requests do not block each other.
func CommittedOnly() ConflictFilter {
	return ConflictFilter{Statuses: []domain.ReservationStatus{domain.StatusApproved, domain.StatusActive}}
}

// FindConflicts returns every existing reservation that blocks the
// candidate window, in input order. An empty result means available.
//
// Day ranges overlap inclusively; minute slots overlap half-open
// (see domain.DateRange.Overlaps / domain.TimeRange.Overlaps).
func FindConflicts(candidate domain.Window, existing []domain.Reservation, filter ConflictFilter) []domain.Reservation {
	conflicts := []domain.Reservation{}
	for _, r := range existing {
		if r.ID != "" && r.ID == filter.ExcludeID {
			continue
		}
		if !statusBlocks(r.Status, filter.Statuses) {
			continue
		}
		if candidate.Overlaps(r.Window) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}

// HasConflict is FindConflicts without materializing the list
func HasConflict(candidate domain.Window, existing []domain.Reservation, filter ConflictFilter) bool {
	for _, r := range existing {
		if r.ID != "" && r.ID == filter.ExcludeID {
			continue
		}
		if !statusBlocks(r.Status, filter.Statuses) {
			continue
		}
		if candidate.Overlaps(r.Window) {
			return true
		}
	}
	return false
}

func statusBlocks(s domain.ReservationStatus, statuses []domain.ReservationStatus) bool {
	if len(statuses) == 0 {
		return s.Blocking()
	}
	for _, want := range statuses {
		if s == want {
			return true
		}
	}
	return false
}
