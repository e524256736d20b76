// Package strikes implements the graduated late-return policy: each
// confirmed late return adds a strike, and the strike count maps to a
// time-boxed booking restriction. The package is pure; enforcement of
// the restriction (blocking new reservations) is the caller's job.
package strikes

import (
	"time"

	"gearbook-backend/internal/core/domain"
)

// Restriction ladder: first strike is a warning, second blocks a week,
// third and beyond block a month.
const (
	restrictionSecondStrike = 7
	restrictionThirdStrike  = 30
)

// RestrictionDays maps a strike number to the restriction it carries
func RestrictionDays(strikeNumber int) int {
	switch {
	case strikeNumber <= 1:
		return 0
	case strikeNumber == 2:
		return restrictionSecondStrike
	default:
		return restrictionThirdStrike
	}
}

// IssueResult describes the consequence of a newly issued strike
type IssueResult struct {
	StrikeNumber    int
	RestrictionDays int
	BlacklistUntil  *time.Time // nil when the strike is a warning only
}

// Escalate computes the next strike given the subject's current active
// strike count.
func Escalate(activeCount int, issuedAt time.Time) IssueResult {
	number := activeCount + 1
	days := RestrictionDays(number)
	result := IssueResult{StrikeNumber: number, RestrictionDays: days}
	if days > 0 {
		until := issuedAt.AddDate(0, 0, days)
		result.BlacklistUntil = &until
	}
	return result
}

// SubjectState is the derived strike standing of one subject
type SubjectState struct {
	StrikeCount    int
	BlacklistUntil *time.Time
}

// Blacklisted reports whether the subject is restricted at now
func (s SubjectState) Blacklisted(now time.Time) bool {
	return s.BlacklistUntil != nil && s.BlacklistUntil.After(now)
}

// Recompute derives a subject's state from their strike records.
// Revoked records are retained for audit but excluded here: the count is
// the number of active records, and the restriction window comes from
// the most recently issued active strike (cleared when none remain or
// the latest strike carries no restriction).
func Recompute(records []domain.StrikeRecord) SubjectState {
	state := SubjectState{}
	var latest *domain.StrikeRecord
	for i := range records {
		r := &records[i]
		if !r.Active() {
			continue
		}
		state.StrikeCount++
		if latest == nil || r.IssuedAt.After(latest.IssuedAt) {
			latest = r
		}
	}
	if latest != nil && latest.RestrictionDays > 0 {
		until := latest.IssuedAt.AddDate(0, 0, latest.RestrictionDays)
		state.BlacklistUntil = &until
	}
	return state
}
