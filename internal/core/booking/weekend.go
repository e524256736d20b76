package booking

import (
	"time"

	"gearbook-backend/internal/core/domain"
)

// WeekendExtension records the outcome of the weekend auto-inclusion
// policy: the office is closed Sat/Sun, so equipment kept over Friday
// or Saturday cannot come back before Sunday. The caller keeps
// OriginalEnd around to offer Revert as an explicit override.
type WeekendExtension struct {
	EffectiveEnd time.Time
	OriginalEnd  time.Time
	Extended     bool
}

// ExtendWeekend applies the policy to a proposed end date:
// Friday extends through Sunday (+2), Saturday through Sunday (+1),
// anything else — Sunday included — is left untouched, which makes
// the policy idempotent.
func ExtendWeekend(end time.Time) WeekendExtension {
	end = domain.Midnight(end)
	switch end.Weekday() {
	case time.Friday:
		return WeekendExtension{EffectiveEnd: end.AddDate(0, 0, 2), OriginalEnd: end, Extended: true}
	case time.Saturday:
		return WeekendExtension{EffectiveEnd: end.AddDate(0, 0, 1), OriginalEnd: end, Extended: true}
	default:
		return WeekendExtension{EffectiveEnd: end, OriginalEnd: end, Extended: false}
	}
}

// Revert restores the end date the requester originally asked for
func (w WeekendExtension) Revert() time.Time {
	return w.OriginalEnd
}
