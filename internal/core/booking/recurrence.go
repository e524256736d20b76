package booking

import (
	"time"

	"gearbook-backend/internal/core/domain"
)

// DefaultMaxLookaheadDays bounds how far Expand walks when the pattern
// terminates by occurrence count.
const DefaultMaxLookaheadDays = 365

// Expand enumerates the occurrence dates of a recurrence pattern by
// walking forward one day at a time from start and testing membership:
//
//   - daily: every day, or Mon-Fri when WeekdaysOnly
//   - weekly: weekday in pattern.Days
//   - biweekly: weekday in pattern.Days and an even week offset from start
//   - monthly: same day-of-month as start (months without that day are
//     skipped, not clamped)
//
// The walk stops once Occurrences dates are collected, the pattern's
// EndDate is passed, or maxLookaheadDays days have been examined.
// Expand only enumerates candidates; conflict skipping is the caller's
// responsibility, one independent booking attempt per date.
func Expand(start time.Time, pattern domain.RecurrencePattern, maxLookaheadDays int) ([]time.Time, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	start = domain.Midnight(start)
	if pattern.Type == domain.RecurrenceNone {
		return []time.Time{start}, nil
	}
	if maxLookaheadDays <= 0 {
		maxLookaheadDays = DefaultMaxLookaheadDays
	}

	dates := []time.Time{}
	for offset := 0; offset <= maxLookaheadDays; offset++ {
		current := start.AddDate(0, 0, offset)
		if pattern.EndDate != nil && current.After(domain.Midnight(*pattern.EndDate)) {
			break
		}
		if matches(current, start, offset, pattern) {
			dates = append(dates, current)
			if pattern.Occurrences > 0 && len(dates) >= pattern.Occurrences {
				break
			}
		}
	}
	return dates, nil
}

func matches(current, start time.Time, daysSinceStart int, pattern domain.RecurrencePattern) bool {
	switch pattern.Type {
	case domain.RecurrenceDaily:
		if pattern.WeekdaysOnly {
			wd := current.Weekday()
			return wd >= time.Monday && wd <= time.Friday
		}
		return true
	case domain.RecurrenceWeekly:
		return weekdayIn(current.Weekday(), pattern.Days)
	case domain.RecurrenceBiweekly:
		return (daysSinceStart/7)%2 == 0 && weekdayIn(current.Weekday(), pattern.Days)
	case domain.RecurrenceMonthly:
		return current.Day() == start.Day()
	}
	return false
}

func weekdayIn(wd time.Weekday, days []time.Weekday) bool {
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}
