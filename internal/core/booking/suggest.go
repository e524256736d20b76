package booking

import "gearbook-backend/internal/core/domain"

// Suggestion is one available alternative window for a conflicted
// request. IncludesWeekend is informational only; the weekend policy is
// not applied here.
type Suggestion struct {
	Range           domain.DateRange `json:"range"`
	Days            int              `json:"days"`
	IncludesWeekend bool             `json:"includes_weekend"`
}

// Suggest defaults
const (
	DefaultSuggestWindowDays = 30
	DefaultSuggestMaxResults = 5
)

// Suggest searches for the nearest non-conflicting windows of the same
// duration as the requested range. Starting the day after the requested
// end, it slides a window of equal duration forward one day at a time,
// up to windowDays, collecting at most maxResults free windows.
// An empty slice means nothing was free; that is not an error.
func Suggest(requested domain.DateRange, existing []domain.Reservation, windowDays, maxResults int) []Suggestion {
	if windowDays <= 0 {
		windowDays = DefaultSuggestWindowDays
	}
	if maxResults <= 0 {
		maxResults = DefaultSuggestMaxResults
	}

	duration := requested.Days()
	suggestions := []Suggestion{}

	// First candidate starts the day after the requested window ends.
	first := domain.DateRange{
		Start: requested.End.AddDate(0, 0, 1),
		End:   requested.End.AddDate(0, 0, duration),
	}
	for offset := 0; offset < windowDays && len(suggestions) < maxResults; offset++ {
		candidate := first.Shift(offset)
		if HasConflict(domain.Window{Dates: candidate}, existing, ConflictFilter{}) {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Range:           candidate,
			Days:            duration,
			IncludesWeekend: candidate.IncludesWeekend(),
		})
	}
	return suggestions
}
