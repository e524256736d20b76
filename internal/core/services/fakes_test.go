package services

import (
	"context"
	"sync"
	"time"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/adapters/persistence/repositories"
	"gearbook-backend/internal/core/domain"
)

// In-memory repository fakes so service tests run without a database.

type fakeResourceRepo struct {
	mu        sync.Mutex
	resources map[string]models.Resource
}

func newFakeResourceRepo(resources ...models.Resource) *fakeResourceRepo {
	repo := &fakeResourceRepo{resources: map[string]models.Resource{}}
	for _, r := range resources {
		repo.resources[r.ID] = r
	}
	return repo
}

func (f *fakeResourceRepo) Create(_ context.Context, resource *models.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resources[resource.ID] = *resource
	return nil
}

func (f *fakeResourceRepo) GetByID(_ context.Context, id string) (*models.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (f *fakeResourceRepo) List(_ context.Context, kind string, activeOnly bool) ([]models.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Resource
	for _, r := range f.resources {
		if kind != "" && r.Kind != kind {
			continue
		}
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeResourceRepo) SetActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resources[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.IsActive = active
	f.resources[id] = r
	return nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]models.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: map[string]models.Reservation{}}
}

func (f *fakeReservationRepo) Create(_ context.Context, r *models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	f.reservations[r.ID] = *r
	return nil
}

func (f *fakeReservationRepo) CreateBatch(ctx context.Context, rs []*models.Reservation) error {
	for _, r := range rs {
		if err := f.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id string) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (f *fakeReservationRepo) ListByResource(_ context.Context, resourceID string, statuses []string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.ResourceID != resourceID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, r.Status) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationRepo) ListByRequester(_ context.Context, requesterID string, statuses []string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.RequesterID != requesterID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, r.Status) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationRepo) ListByRecurrenceGroup(_ context.Context, groupID string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.RecurrenceGroupID != nil && *r.RecurrenceGroupID == groupID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListAll(_ context.Context, statuses []string, resourceID string, limit, offset int) ([]models.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if resourceID != "" && r.ResourceID != resourceID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, r.Status) {
			continue
		}
		out = append(out, r)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeReservationRepo) UpdateStatus(_ context.Context, id string, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return domain.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			r.Status = value.(string)
		case "decided_by":
			v := value.(string)
			r.DecidedBy = &v
		case "decided_at":
			v := value.(time.Time)
			r.DecidedAt = &v
		case "denial_reason":
			v := value.(string)
			r.DenialReason = &v
		case "returned_at":
			v := value.(time.Time)
			r.ReturnedAt = &v
		}
	}
	f.reservations[id] = r
	return nil
}

func (f *fakeReservationRepo) ListDueForActivation(_ context.Context, day time.Time) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.Status == string(domain.StatusApproved) && !domain.Midnight(r.StartDate).After(domain.Midnight(day)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListOverdue(_ context.Context, day time.Time) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.Status == string(domain.StatusActive) && domain.Midnight(r.EndDate).Before(domain.Midnight(day)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListEndingOn(_ context.Context, day time.Time) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.Status == string(domain.StatusActive) && domain.Midnight(r.EndDate).Equal(domain.Midnight(day)) && !r.ReminderSent {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) MarkReminderSent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.ReminderSent = true
	f.reservations[id] = r
	return nil
}

func (f *fakeReservationRepo) CountCommittedByRequester(_ context.Context, requesterID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.reservations {
		if r.RequesterID == requesterID && domain.ReservationStatus(r.Status).Committed() {
			count++
		}
	}
	return count, nil
}

type fakeStrikeRepo struct {
	mu      sync.Mutex
	records map[string]models.StrikeRecord
	states  map[string]models.SubjectStrikeState
}

func newFakeStrikeRepo() *fakeStrikeRepo {
	return &fakeStrikeRepo{
		records: map[string]models.StrikeRecord{},
		states:  map[string]models.SubjectStrikeState{},
	}
}

func (f *fakeStrikeRepo) Transaction(_ context.Context, fn func(tx repositories.StrikeRepository) error) error {
	return fn(f)
}

func (f *fakeStrikeRepo) CreateRecord(_ context.Context, record *models.StrikeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ID] = *record
	return nil
}

func (f *fakeStrikeRepo) GetRecord(_ context.Context, id string) (*models.StrikeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (f *fakeStrikeRepo) ListBySubject(_ context.Context, subjectID string) ([]models.StrikeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StrikeRecord
	for _, r := range f.records {
		if r.SubjectID == subjectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStrikeRepo) ListActiveBySubject(_ context.Context, subjectID string, _ bool) ([]models.StrikeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StrikeRecord
	for _, r := range f.records {
		if r.SubjectID == subjectID && r.RevokedAt == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStrikeRepo) RevokeRecord(_ context.Context, id string, revokedBy string, reason string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || r.RevokedAt != nil {
		return 0, nil
	}
	r.RevokedAt = &at
	r.RevokedBy = &revokedBy
	r.RevokeReason = &reason
	f.records[id] = r
	return 1, nil
}

func (f *fakeStrikeRepo) RevokeActiveBySubject(_ context.Context, subjectID string, revokedBy string, reason string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var revoked int64
	for id, r := range f.records {
		if r.SubjectID == subjectID && r.RevokedAt == nil {
			r.RevokedAt = &at
			r.RevokedBy = &revokedBy
			r.RevokeReason = &reason
			f.records[id] = r
			revoked++
		}
	}
	return revoked, nil
}

func (f *fakeStrikeRepo) RevokeAllActive(_ context.Context, revokedBy string, reason string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var revoked int64
	for id, r := range f.records {
		if r.RevokedAt == nil {
			r.RevokedAt = &at
			r.RevokedBy = &revokedBy
			r.RevokeReason = &reason
			f.records[id] = r
			revoked++
		}
	}
	return revoked, nil
}

func (f *fakeStrikeRepo) ListActiveSubjects(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	subjects := []string{}
	for _, r := range f.records {
		if r.RevokedAt == nil && !seen[r.SubjectID] {
			seen[r.SubjectID] = true
			subjects = append(subjects, r.SubjectID)
		}
	}
	return subjects, nil
}

func (f *fakeStrikeRepo) GetState(_ context.Context, subjectID string) (*models.SubjectStrikeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.states[subjectID]; ok {
		return &state, nil
	}
	return &models.SubjectStrikeState{SubjectID: subjectID}, nil
}

func (f *fakeStrikeRepo) SaveState(_ context.Context, state *models.SubjectStrikeState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state.SubjectID] = *state
	return nil
}

func (f *fakeStrikeRepo) ListFlagged(_ context.Context, now time.Time) ([]models.SubjectStrikeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SubjectStrikeState
	for _, state := range f.states {
		if state.BlacklistUntil != nil && state.BlacklistUntil.After(now) {
			out = append(out, state)
		}
	}
	return out, nil
}

// fakeNotifier records the events it was asked to send
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func (f *fakeNotifier) NotifySubmitted(domain.Reservation, string) { f.record("submitted") }

func (f *fakeNotifier) NotifyDecision(r domain.Reservation, _ string) {
	f.record("decision:" + string(r.Status))
}

func (f *fakeNotifier) NotifyReturnReminder(domain.Reservation, string) { f.record("reminder") }

func (f *fakeNotifier) NotifyOverdue(domain.Reservation, string, int) { f.record("overdue") }

func (f *fakeNotifier) NotifyStrikeIssued(string, int, int) { f.record("strike") }

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
