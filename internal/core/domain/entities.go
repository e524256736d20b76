package domain

import "time"

// Role represents an actor role in the system
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Actor identifies who is performing an operation.
// Authentication happens upstream; the engine only cares about ID + role.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin returns true for actors allowed to use the admin surface
func (a Actor) IsAdmin() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

// ResourceKind distinguishes bookable resource types
type ResourceKind string

const (
	KindEquipment ResourceKind = "equipment"
	KindRoom      ResourceKind = "room"
)

// Granularity is the booking granularity of a resource
type Granularity string

const (
	GranularityDay    Granularity = "day"    // equipment: whole days
	GranularityMinute Granularity = "minute" // rooms: minute-of-day slots
)

// GranularityFor maps a resource kind to its booking granularity
func GranularityFor(kind ResourceKind) Granularity {
	if kind == KindRoom {
		return GranularityMinute
	}
	return GranularityDay
}

// Resource represents a bookable equipment item or room
type Resource struct {
	ID          string
	Name        string
	Kind        ResourceKind
	Granularity Granularity
	Department  string
	IsActive    bool
}

// ReservationStatus is the closed set of reservation states
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusApproved  ReservationStatus = "approved"
	StatusDenied    ReservationStatus = "denied"
	StatusCancelled ReservationStatus = "cancelled"
	StatusActive    ReservationStatus = "active"
	StatusCompleted ReservationStatus = "completed"
	StatusOverdue   ReservationStatus = "overdue"
)

// Valid reports whether s is a known reservation status
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusCancelled,
		StatusActive, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Blocking reports whether a reservation in this status counts for
// conflict purposes. Cancelled/denied/completed never block.
func (s ReservationStatus) Blocking() bool {
	switch s {
	case StatusPending, StatusApproved, StatusActive:
		return true
	}
	return false
}

// Committed reports whether this status holds the resource
// (approved or active — pending does not hold it yet).
func (s ReservationStatus) Committed() bool {
	return s == StatusApproved || s == StatusActive
}

// Terminal reports whether the status admits no further transitions
func (s ReservationStatus) Terminal() bool {
	return s == StatusDenied || s == StatusCancelled || s == StatusCompleted
}

// DateRange is an inclusive day-granularity range: both Start and End
// days belong to the reservation.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a validated inclusive date range (start <= end).
// Inputs are truncated to midnight.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = Midnight(start)
	end = Midnight(end)
	if end.Before(start) {
		return DateRange{}, ErrInvalidRange
	}
	return DateRange{Start: start, End: end}, nil
}

// Days returns the inclusive day count of the range
func (r DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

// Contains reports whether day d falls inside the range
func (r DateRange) Contains(d time.Time) bool {
	d = Midnight(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps uses the inclusive convention for day ranges:
// candidate.start <= existing.end AND candidate.end >= existing.start.
// Two rentals sharing a handover day DO conflict.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Shift returns the range moved forward by the given number of days
func (r DateRange) Shift(days int) DateRange {
	return DateRange{
		Start: r.Start.AddDate(0, 0, days),
		End:   r.End.AddDate(0, 0, days),
	}
}

// IncludesWeekend reports whether any day of the range is Sat/Sun
func (r DateRange) IncludesWeekend() bool {
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return true
		}
	}
	return false
}

// MinutesPerDay bounds TimeRange minutes
const MinutesPerDay = 24 * 60

// TimeRange is a half-open minute-of-day range [StartMinute, EndMinute).
// Half-open so adjacent room slots (09:00-10:00, 10:00-11:00) coexist.
type TimeRange struct {
	StartMinute int
	EndMinute   int
}

// NewTimeRange builds a validated minute range (0 <= start < end <= 1440)
func NewTimeRange(startMinute, endMinute int) (TimeRange, error) {
	if startMinute < 0 || endMinute > MinutesPerDay || startMinute >= endMinute {
		return TimeRange{}, ErrInvalidRange
	}
	return TimeRange{StartMinute: startMinute, EndMinute: endMinute}, nil
}

// Overlaps uses the half-open convention for minute ranges:
// candidate.start < existing.end AND candidate.end > existing.start.
// This intentionally differs from DateRange.Overlaps.
func (t TimeRange) Overlaps(o TimeRange) bool {
	return t.StartMinute < o.EndMinute && t.EndMinute > o.StartMinute
}

// Window is the booked extent of a reservation: a date range, plus a
// minute slot for minute-granularity resources (Slot nil for equipment).
type Window struct {
	Dates DateRange
	Slot  *TimeRange
}

// Overlaps reports whether two windows collide. Day extents use the
// inclusive rule; when both windows carry a slot the half-open minute
// rule must also hold. A slotless window blocks the whole day.
func (w Window) Overlaps(o Window) bool {
	if !w.Dates.Overlaps(o.Dates) {
		return false
	}
	if w.Slot != nil && o.Slot != nil {
		return w.Slot.Overlaps(*o.Slot)
	}
	return true
}

// Reservation is the engine-facing view of a booking. Persistence models
// convert to this before any engine call.
type Reservation struct {
	ID           string
	ResourceID   string
	RequesterID  string
	Window       Window
	Status       ReservationStatus
	Purpose      string
	CreatedAt    time.Time
	DecidedBy    *string
	DecidedAt    *time.Time
	DenialReason *string
	ReturnedAt   *time.Time
}

// RecurrenceType enumerates supported recurrence patterns
type RecurrenceType string

const (
	RecurrenceNone     RecurrenceType = "none"
	RecurrenceDaily    RecurrenceType = "daily"
	RecurrenceWeekly   RecurrenceType = "weekly"
	RecurrenceBiweekly RecurrenceType = "biweekly"
	RecurrenceMonthly  RecurrenceType = "monthly"
)

// RecurrencePattern describes how one request expands into dated occurrences.
// Termination is EndDate XOR Occurrences.
type RecurrencePattern struct {
	Type         RecurrenceType
	Days         []time.Weekday // weekly/biweekly: which weekdays
	WeekdaysOnly bool           // daily: Mon-Fri only
	EndDate      *time.Time
	Occurrences  int
}

// Validate checks pattern well-formedness
func (p RecurrencePattern) Validate() error {
	switch p.Type {
	case RecurrenceNone:
		return nil
	case RecurrenceDaily, RecurrenceMonthly:
	case RecurrenceWeekly, RecurrenceBiweekly:
		if len(p.Days) == 0 {
			return ErrInvalidRange
		}
	default:
		return ErrInvalidRange
	}
	hasEnd := p.EndDate != nil
	hasCount := p.Occurrences > 0
	if hasEnd == hasCount { // exactly one termination condition
		return ErrInvalidRange
	}
	return nil
}

// StrikeRecord is one recorded late-return policy violation
type StrikeRecord struct {
	ID              string
	SubjectID       string
	ReservationID   string
	StrikeNumber    int
	DaysOverdue     int
	RestrictionDays int
	IssuedBy        *string // nil = automatic
	IssuedAt        time.Time
	RevokedAt       *time.Time
	RevokedBy       *string
	RevokeReason    *string
}

// Active reports whether the strike still counts toward the subject's total
func (s StrikeRecord) Active() bool {
	return s.RevokedAt == nil
}

// Midnight truncates t to the start of its day
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the calendar-day delta from a to b. Dates are
// compared by their UTC day ordinal, so a DST shift inside the span
// cannot skew the count.
func DaysBetween(a, b time.Time) int {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	ua := time.Date(ya, ma, da, 0, 0, 0, 0, time.UTC)
	ub := time.Date(yb, mb, db, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
