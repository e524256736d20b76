package repositories

import (
	"context"
	"time"

	"gearbook-backend/internal/adapters/persistence/models"
)

// ResourceRepository defines resource repository interface
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	List(ctx context.Context, kind string, activeOnly bool) ([]models.Resource, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// ReservationRepository defines reservation repository interface
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	CreateBatch(ctx context.Context, reservations []*models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	ListByResource(ctx context.Context, resourceID string, statuses []string) ([]models.Reservation, error)
	ListByRequester(ctx context.Context, requesterID string, statuses []string) ([]models.Reservation, error)
	ListByRecurrenceGroup(ctx context.Context, groupID string) ([]models.Reservation, error)
	ListAll(ctx context.Context, statuses []string, resourceID string, limit, offset int) ([]models.Reservation, int64, error)
	UpdateStatus(ctx context.Context, id string, updates map[string]interface{}) error
	ListDueForActivation(ctx context.Context, day time.Time) ([]models.Reservation, error)
	ListOverdue(ctx context.Context, day time.Time) ([]models.Reservation, error)
	ListEndingOn(ctx context.Context, day time.Time) ([]models.Reservation, error)
	MarkReminderSent(ctx context.Context, id string) error
	CountCommittedByRequester(ctx context.Context, requesterID string) (int64, error)
}

// StrikeRepository defines strike repository interface.
// Transaction runs fn against a repository bound to one transaction;
// strike mutations and the derived state write must share it.
type StrikeRepository interface {
	Transaction(ctx context.Context, fn func(tx StrikeRepository) error) error
	CreateRecord(ctx context.Context, record *models.StrikeRecord) error
	GetRecord(ctx context.Context, id string) (*models.StrikeRecord, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.StrikeRecord, error)
	ListActiveBySubject(ctx context.Context, subjectID string, forUpdate bool) ([]models.StrikeRecord, error)
	RevokeRecord(ctx context.Context, id string, revokedBy string, reason string, at time.Time) (int64, error)
	RevokeActiveBySubject(ctx context.Context, subjectID string, revokedBy string, reason string, at time.Time) (int64, error)
	RevokeAllActive(ctx context.Context, revokedBy string, reason string, at time.Time) (int64, error)
	ListActiveSubjects(ctx context.Context) ([]string, error)
	GetState(ctx context.Context, subjectID string) (*models.SubjectStrikeState, error)
	SaveState(ctx context.Context, state *models.SubjectStrikeState) error
	ListFlagged(ctx context.Context, now time.Time) ([]models.SubjectStrikeState, error)
}
