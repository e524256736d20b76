package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/adapters/persistence/repositories"
	"gearbook-backend/internal/core/booking"
	"gearbook-backend/internal/core/domain"
	"gearbook-backend/internal/pkg/locker"
)

// Reservation service errors
var (
	ErrResourceNotFound    = errors.New("resource not found")
	ErrResourceInactive    = errors.New("resource is not accepting reservations")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSlotRequired        = errors.New("room reservations require a time slot")
	ErrSlotNotAllowed      = errors.New("equipment reservations do not take a time slot")
	ErrNotOwner            = errors.New("reservation belongs to another requester")
)

// Approval lock parameters: short TTL so a crashed approver cannot
// wedge a resource, short wait so a contended decision fails fast.
const (
	approvalLockTTL  = 10 * time.Second
	approvalLockWait = 3 * time.Second
)

const dateLayout = "2006-01-02"

// ReservationService handles reservation business logic
type ReservationService struct {
	reservationRepo repositories.ReservationRepository
	resourceRepo    repositories.ResourceRepository
	strikeService   *StrikeService
	locker          locker.Locker
	notifier        Notifier
}

// NewReservationService creates a new reservation service
func NewReservationService(
	reservationRepo repositories.ReservationRepository,
	resourceRepo repositories.ResourceRepository,
	strikeService *StrikeService,
	resourceLocker locker.Locker,
	notifier Notifier,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		resourceRepo:    resourceRepo,
		strikeService:   strikeService,
		locker:          resourceLocker,
		notifier:        notifier,
	}
}

// SubmitInput represents a reservation request
type SubmitInput struct {
	ResourceID  string `json:"resource_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate     string `json:"end_date" validate:"required"`   // YYYY-MM-DD
	StartMinute *int   `json:"start_minute,omitempty"`         // rooms only
	EndMinute   *int   `json:"end_minute,omitempty"`           // rooms only
	Purpose     string `json:"purpose,omitempty"`

	// SkipWeekendExtension keeps a Fri/Sat due date as requested,
	// e.g. for weekend field shoots with staff sign-off.
	SkipWeekendExtension bool `json:"skip_weekend_extension,omitempty"`
}

// Submit creates a pending reservation after the eligibility gate, the
// weekend policy and the conflict check all pass.
func (s *ReservationService) Submit(ctx context.Context, input *SubmitInput, actor domain.Actor) (*models.Reservation, error) {
	// 1. Eligibility gate: restricted subjects cannot submit
	if err := s.strikeService.AssertEligible(ctx, actor.ID, time.Now()); err != nil {
		return nil, err
	}

	// 2. Resource must exist and be active
	resource, err := s.resourceRepo.GetByID(ctx, input.ResourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	if !resource.IsActive {
		return nil, ErrResourceInactive
	}

	// 3. Validate the requested window
	window, weekendExt, err := s.buildWindow(resource, input)
	if err != nil {
		return nil, err
	}

	// 4. Conflict check against reservations that hold the resource
	if err := s.checkConflicts(ctx, resource.ID, window, booking.CommittedOnly()); err != nil {
		return nil, err
	}

	// 5. Persist as pending
	record := s.newRecord(resource, window, weekendExt, input.Purpose, actor)
	if err := s.reservationRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	log.Printf("✅ Reservation %s submitted for resource %s (%s - %s)",
		record.ID, resource.ID,
		window.Dates.Start.Format(dateLayout), window.Dates.End.Format(dateLayout))

	if s.notifier != nil {
		s.notifier.NotifySubmitted(record.ToDomain(), resource.Name)
	}
	return record, nil
}

// RecurringInput represents a recurring reservation request
type RecurringInput struct {
	SubmitInput
	Recurrence RecurrenceInput `json:"recurrence" validate:"required"`
}

// RecurrenceInput mirrors domain.RecurrencePattern for the wire
type RecurrenceInput struct {
	Type         string `json:"type" validate:"required"`
	Days         []int  `json:"days,omitempty"` // 0=Sunday .. 6=Saturday
	WeekdaysOnly bool   `json:"weekdays_only,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Occurrences  int    `json:"occurrences,omitempty"`
}

// FailedOccurrence records one occurrence that could not be reserved
type FailedOccurrence struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// RecurringResult is the partial-success outcome of a recurring request
type RecurringResult struct {
	GroupID   string                `json:"group_id"`
	Succeeded []*models.Reservation `json:"succeeded"`
	Failed    []FailedOccurrence    `json:"failed"`
}

// SubmitRecurring expands the pattern into dated occurrences and
// reserves each independently: conflicted occurrences fail without
// aborting the rest.
func (s *ReservationService) SubmitRecurring(ctx context.Context, input *RecurringInput, actor domain.Actor) (*RecurringResult, error) {
	if err := s.strikeService.AssertEligible(ctx, actor.ID, time.Now()); err != nil {
		return nil, err
	}

	resource, err := s.resourceRepo.GetByID(ctx, input.ResourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	if !resource.IsActive {
		return nil, ErrResourceInactive
	}

	window, _, err := s.buildWindow(resource, &input.SubmitInput)
	if err != nil {
		return nil, err
	}

	pattern, err := input.Recurrence.toDomain()
	if err != nil {
		return nil, err
	}

	starts, err := booking.Expand(window.Dates.Start, pattern, booking.DefaultMaxLookaheadDays)
	if err != nil {
		return nil, err
	}

	duration := window.Dates.Days()
	groupID := uuid.New().String()
	result := &RecurringResult{GroupID: groupID, Succeeded: []*models.Reservation{}, Failed: []FailedOccurrence{}}
	var batch []*models.Reservation

	for _, start := range starts {
		occurrence := domain.Window{
			Dates: domain.DateRange{Start: start, End: start.AddDate(0, 0, duration-1)},
			Slot:  window.Slot,
		}
		// Weekend extension applies per occurrence for equipment.
		occExt := booking.WeekendExtension{EffectiveEnd: occurrence.Dates.End, OriginalEnd: occurrence.Dates.End}
		if resource.Kind == string(domain.KindEquipment) {
			occExt = booking.ExtendWeekend(occurrence.Dates.End)
			occurrence.Dates.End = occExt.EffectiveEnd
		}

		if err := s.checkConflicts(ctx, resource.ID, occurrence, booking.CommittedOnly()); err != nil {
			result.Failed = append(result.Failed, FailedOccurrence{
				Date:   start.Format(dateLayout),
				Reason: err.Error(),
			})
			continue
		}
		// Occurrences inside one batch must not collide with each other.
		if s.collidesWithBatch(occurrence, batch) {
			result.Failed = append(result.Failed, FailedOccurrence{
				Date:   start.Format(dateLayout),
				Reason: "overlaps an earlier occurrence in the same series",
			})
			continue
		}

		record := s.newRecord(resource, occurrence, occExt, input.Purpose, actor)
		record.RecurrenceGroupID = &groupID
		batch = append(batch, record)
	}

	if err := s.reservationRepo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	result.Succeeded = batch
	if result.Succeeded == nil {
		result.Succeeded = []*models.Reservation{}
	}

	log.Printf("✅ Recurring series %s: %d reserved, %d failed",
		groupID, len(result.Succeeded), len(result.Failed))
	return result, nil
}

// Approve moves a pending reservation to approved. The per-resource
// lease plus the decision-time re-check close the gap between two staff
// members approving overlapping requests.
func (s *ReservationService) Approve(ctx context.Context, id string, actor domain.Actor) (*models.Reservation, error) {
	record, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, "resource:"+record.ResourceID, approvalLockTTL, approvalLockWait)
	if err != nil {
		if errors.Is(err, locker.ErrTimeout) {
			return nil, domain.ErrBusy
		}
		return nil, err
	}
	defer release()

	// Re-read under the lease: the row may have been decided meanwhile.
	record, err = s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reservation := record.ToDomain()
	if err := booking.CheckTransition(reservation, booking.TransitionRequest{
		To:    domain.StatusApproved,
		Actor: actor,
		Now:   time.Now(),
	}); err != nil {
		return nil, err
	}

	// Decision-time conflict re-check: anything blocking except itself.
	filter := booking.ConflictFilter{ExcludeID: record.ID}
	if err := s.checkConflicts(ctx, record.ResourceID, reservation.Window, filter); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     string(domain.StatusApproved),
		"decided_by": actor.ID,
		"decided_at": now,
	}
	if err := s.reservationRepo.UpdateStatus(ctx, id, updates); err != nil {
		return nil, err
	}

	// Reload to return fresh state
	record, err = s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Reservation %s approved by %s", id, actor.ID)
	if s.notifier != nil {
		s.notifier.NotifyDecision(record.ToDomain(), record.Resource.Name)
	}
	return record, nil
}

// Deny moves a pending reservation to denied with a mandatory reason
func (s *ReservationService) Deny(ctx context.Context, id string, actor domain.Actor, reason string) (*models.Reservation, error) {
	record, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if err := booking.CheckTransition(record.ToDomain(), booking.TransitionRequest{
		To:     domain.StatusDenied,
		Actor:  actor,
		Now:    time.Now(),
		Reason: reason,
	}); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        string(domain.StatusDenied),
		"decided_by":    actor.ID,
		"decided_at":    now,
		"denial_reason": reason,
	}
	if err := s.reservationRepo.UpdateStatus(ctx, id, updates); err != nil {
		return nil, err
	}

	record, err = s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Printf("❌ Reservation %s denied by %s: %s", id, actor.ID, reason)
	if s.notifier != nil {
		s.notifier.NotifyDecision(record.ToDomain(), record.Resource.Name)
	}
	return record, nil
}

// Cancel withdraws a pending or approved reservation. The lifecycle
// guards decide who may cancel once the range has started.
func (s *ReservationService) Cancel(ctx context.Context, id string, actor domain.Actor) (*models.Reservation, error) {
	record, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if err := booking.CheckTransition(record.ToDomain(), booking.TransitionRequest{
		To:    domain.StatusCancelled,
		Actor: actor,
		Now:   time.Now(),
	}); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status": string(domain.StatusCancelled),
	}
	if err := s.reservationRepo.UpdateStatus(ctx, id, updates); err != nil {
		return nil, err
	}

	record, err = s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Printf("🗑️ Reservation %s cancelled by %s", id, actor.ID)
	return record, nil
}

// ReturnResult reports a confirmed return, including any strike the
// lateness earned
type ReturnResult struct {
	Reservation *models.Reservation  `json:"reservation"`
	DaysOverdue int                  `json:"days_overdue"`
	Strike      *models.StrikeRecord `json:"strike,omitempty"`
}

// ConfirmReturn completes an active or overdue reservation. A return
// past the effective end date earns the requester an automatic strike.
func (s *ReservationService) ConfirmReturn(ctx context.Context, id string, actor domain.Actor) (*ReturnResult, error) {
	record, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	now := time.Now()
	if err := booking.CheckTransition(record.ToDomain(), booking.TransitionRequest{
		To:    domain.StatusCompleted,
		Actor: actor,
		Now:   now,
	}); err != nil {
		return nil, err
	}

	daysOverdue := 0
	dueEnd := domain.Midnight(record.EndDate)
	if today := domain.Midnight(now); today.After(dueEnd) {
		daysOverdue = domain.DaysBetween(dueEnd, today)
	}

	updates := map[string]interface{}{
		"status":      string(domain.StatusCompleted),
		"returned_at": now,
	}
	if err := s.reservationRepo.UpdateStatus(ctx, id, updates); err != nil {
		return nil, err
	}

	result := &ReturnResult{DaysOverdue: daysOverdue}

	// Late return: issue the strike automatically (no issuer).
	if daysOverdue > 0 {
		strike, err := s.strikeService.Issue(ctx, &IssueStrikeInput{
			SubjectID:     record.RequesterID,
			ReservationID: record.ID,
			DaysOverdue:   daysOverdue,
		}, nil)
		if err != nil {
			log.Printf("❌ Auto strike for reservation %s failed: %v", id, err)
		} else {
			result.Strike = strike
		}
	}

	record, err = s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Reservation = record

	log.Printf("✅ Reservation %s returned (%d day(s) overdue)", id, daysOverdue)
	return result, nil
}

// Alternatives suggests the nearest free windows of equal duration when
// the requested range conflicts
func (s *ReservationService) Alternatives(ctx context.Context, resourceID string, start, end time.Time) ([]booking.Suggestion, error) {
	if _, err := s.resourceRepo.GetByID(ctx, resourceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	requested, err := domain.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}

	existing, err := s.committedSnapshot(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return booking.Suggest(requested, existing, booking.DefaultSuggestWindowDays, booking.DefaultSuggestMaxResults), nil
}

// Availability returns the committed reservations inside a window so a
// caller can render the busy calendar
func (s *ReservationService) Availability(ctx context.Context, resourceID string, start, end time.Time) ([]domain.Reservation, error) {
	if _, err := s.resourceRepo.GetByID(ctx, resourceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	window, err := domain.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}

	existing, err := s.committedSnapshot(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	busy := []domain.Reservation{}
	for _, r := range existing {
		if r.Window.Dates.Overlaps(window) {
			busy = append(busy, r)
		}
	}
	return busy, nil
}

// GetByID returns one reservation; non-staff callers only see their own
func (s *ReservationService) GetByID(ctx context.Context, id string, actor domain.Actor) (*models.Reservation, error) {
	record, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin() && record.RequesterID != actor.ID {
		return nil, ErrNotOwner
	}
	return record, nil
}

// ListMine returns the actor's reservations, optionally filtered by status
func (s *ReservationService) ListMine(ctx context.Context, actor domain.Actor, statuses []string) ([]models.Reservation, error) {
	return s.reservationRepo.ListByRequester(ctx, actor.ID, statuses)
}

// ListForResource returns a resource's reservations for the admin surface
func (s *ReservationService) ListForResource(ctx context.Context, resourceID string, statuses []string) ([]models.Reservation, error) {
	return s.reservationRepo.ListByResource(ctx, resourceID, statuses)
}

// ListGroup returns every occurrence of a recurring series; non-staff
// callers only see their own series
func (s *ReservationService) ListGroup(ctx context.Context, groupID string, actor domain.Actor) ([]models.Reservation, error) {
	records, err := s.reservationRepo.ListByRecurrenceGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrReservationNotFound
	}
	if !actor.IsAdmin() && records[0].RequesterID != actor.ID {
		return nil, ErrNotOwner
	}
	return records, nil
}

// CommittedCount reports how many reservations currently hold a resource
// for the requester (eligibility pre-check surface)
func (s *ReservationService) CommittedCount(ctx context.Context, requesterID string) (int64, error) {
	return s.reservationRepo.CountCommittedByRequester(ctx, requesterID)
}

// ============================================================
// Internal helpers
// ============================================================

// buildWindow validates the raw input against the resource granularity
// and applies the weekend extension for day-granularity resources.
func (s *ReservationService) buildWindow(resource *models.Resource, input *SubmitInput) (domain.Window, booking.WeekendExtension, error) {
	start, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return domain.Window{}, booking.WeekendExtension{}, domain.ErrInvalidRange
	}
	end, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		return domain.Window{}, booking.WeekendExtension{}, domain.ErrInvalidRange
	}

	dates, err := domain.NewDateRange(start, end)
	if err != nil {
		return domain.Window{}, booking.WeekendExtension{}, err
	}

	window := domain.Window{Dates: dates}
	ext := booking.WeekendExtension{EffectiveEnd: dates.End, OriginalEnd: dates.End}

	switch domain.Granularity(resource.Granularity) {
	case domain.GranularityMinute:
		if input.StartMinute == nil || input.EndMinute == nil {
			return domain.Window{}, ext, ErrSlotRequired
		}
		slot, err := domain.NewTimeRange(*input.StartMinute, *input.EndMinute)
		if err != nil {
			return domain.Window{}, ext, err
		}
		window.Slot = &slot
	default:
		if input.StartMinute != nil || input.EndMinute != nil {
			return domain.Window{}, ext, ErrSlotNotAllowed
		}
		// Equipment due on Fri/Sat rolls to the next open day.
		if !input.SkipWeekendExtension {
			ext = booking.ExtendWeekend(dates.End)
			window.Dates.End = ext.EffectiveEnd
		}
	}
	return window, ext, nil
}

// checkConflicts loads the resource's reservations and runs the
// detector; a non-empty result becomes a ConflictError.
func (s *ReservationService) checkConflicts(ctx context.Context, resourceID string, window domain.Window, filter booking.ConflictFilter) error {
	existing, err := s.blockingSnapshot(ctx, resourceID, filter)
	if err != nil {
		return err
	}
	conflicts := booking.FindConflicts(window, existing, filter)
	if len(conflicts) > 0 {
		return &domain.ConflictError{ResourceID: resourceID, Conflicts: conflicts}
	}
	return nil
}

func (s *ReservationService) blockingSnapshot(ctx context.Context, resourceID string, filter booking.ConflictFilter) ([]domain.Reservation, error) {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []domain.ReservationStatus{domain.StatusPending, domain.StatusApproved, domain.StatusActive}
	}
	raw := make([]string, 0, len(statuses))
	for _, st := range statuses {
		raw = append(raw, string(st))
	}
	rows, err := s.reservationRepo.ListByResource(ctx, resourceID, raw)
	if err != nil {
		return nil, err
	}
	return models.ReservationsToDomain(rows), nil
}

func (s *ReservationService) committedSnapshot(ctx context.Context, resourceID string) ([]domain.Reservation, error) {
	return s.blockingSnapshot(ctx, resourceID, booking.CommittedOnly())
}

func (s *ReservationService) collidesWithBatch(candidate domain.Window, batch []*models.Reservation) bool {
	for _, b := range batch {
		if candidate.Overlaps(b.ToDomain().Window) {
			return true
		}
	}
	return false
}

// newRecord builds the persistence row for a validated window
func (s *ReservationService) newRecord(resource *models.Resource, window domain.Window, ext booking.WeekendExtension, purpose string, actor domain.Actor) *models.Reservation {
	record := &models.Reservation{
		ID:              uuid.New().String(),
		ResourceID:      resource.ID,
		RequesterID:     actor.ID,
		Status:          string(domain.StatusPending),
		StartDate:       window.Dates.Start,
		EndDate:         window.Dates.End,
		WeekendExtended: ext.Extended,
		Purpose:         purpose,
	}
	if ext.Extended {
		original := ext.OriginalEnd
		record.OriginalEndDate = &original
	}
	if window.Slot != nil {
		startMin := window.Slot.StartMinute
		endMin := window.Slot.EndMinute
		record.SlotStartMinute = &startMin
		record.SlotEndMinute = &endMin
	}
	return record
}

// toDomain converts the wire recurrence input, rejecting malformed
// patterns before expansion
func (in RecurrenceInput) toDomain() (domain.RecurrencePattern, error) {
	pattern := domain.RecurrencePattern{
		Type:         domain.RecurrenceType(in.Type),
		WeekdaysOnly: in.WeekdaysOnly,
		Occurrences:  in.Occurrences,
	}
	for _, d := range in.Days {
		if d < 0 || d > 6 {
			return domain.RecurrencePattern{}, domain.ErrInvalidRange
		}
		pattern.Days = append(pattern.Days, time.Weekday(d))
	}
	if in.EndDate != "" {
		end, err := time.Parse(dateLayout, in.EndDate)
		if err != nil {
			return domain.RecurrencePattern{}, domain.ErrInvalidRange
		}
		pattern.EndDate = &end
	}
	if err := pattern.Validate(); err != nil {
		return domain.RecurrencePattern{}, err
	}
	return pattern, nil
}
