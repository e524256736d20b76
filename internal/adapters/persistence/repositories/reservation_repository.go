package repositories

import (
	"context"
	"errors"
	"time"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/core/domain"

	"gorm.io/gorm"
)

// reservationRepository implements ReservationRepository interface
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// Create inserts a new reservation
func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// CreateBatch inserts a recurring series in one transaction
func (r *reservationRepository) CreateBatch(ctx context.Context, reservations []*models.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, reservation := range reservations {
			if err := tx.Create(reservation).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID returns a reservation with its resource preloaded
func (r *reservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Resource").
		Where("id = ?", id).
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListByResource returns reservations for a resource, optionally
// restricted to a status set. Ordered by start date for stable output.
func (r *reservationRepository) ListByResource(ctx context.Context, resourceID string, statuses []string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	query := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("start_date ASC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Find(&reservations).Error
	return reservations, err
}

// ListByRequester returns a requester's reservations, newest first
func (r *reservationRepository) ListByRequester(ctx context.Context, requesterID string, statuses []string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	query := r.db.WithContext(ctx).
		Preload("Resource").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Find(&reservations).Error
	return reservations, err
}

// ListByRecurrenceGroup returns all occurrences of one recurring request
func (r *reservationRepository) ListByRecurrenceGroup(ctx context.Context, groupID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("recurrence_group_id = ?", groupID).
		Order("start_date ASC").
		Find(&reservations).Error
	return reservations, err
}

// ListAll returns a page of reservations for the admin overview,
// newest first, with the total count for pagination metadata
func (r *reservationRepository) ListAll(ctx context.Context, statuses []string, resourceID string, limit, offset int) ([]models.Reservation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Reservation{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if resourceID != "" {
		query = query.Where("resource_id = ?", resourceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reservations []models.Reservation
	err := query.
		Preload("Resource").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reservations).Error
	return reservations, total, err
}

// UpdateStatus updates reservation status and related columns
func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDueForActivation returns approved reservations whose range has
// started as of the given day
func (r *reservationRepository) ListDueForActivation(ctx context.Context, day time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_date <= ?", string(domain.StatusApproved), domain.Midnight(day)).
		Find(&reservations).Error
	return reservations, err
}

// ListOverdue returns active reservations whose effective end has passed
func (r *reservationRepository) ListOverdue(ctx context.Context, day time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Resource").
		Where("status = ? AND end_date < ?", string(domain.StatusActive), domain.Midnight(day)).
		Find(&reservations).Error
	return reservations, err
}

// ListEndingOn returns active reservations due back on the given day
// that have not been reminded yet
func (r *reservationRepository) ListEndingOn(ctx context.Context, day time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Resource").
		Where("status = ? AND end_date = ? AND reminder_sent = ?",
			string(domain.StatusActive), domain.Midnight(day), false).
		Find(&reservations).Error
	return reservations, err
}

// MarkReminderSent flags a reservation so the daily reminder fires once
func (r *reservationRepository) MarkReminderSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}

// CountCommittedByRequester counts reservations currently holding a
// resource for the requester
func (r *reservationRepository) CountCommittedByRequester(ctx context.Context, requesterID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("requester_id = ? AND status IN ?", requesterID,
			[]string{string(domain.StatusApproved), string(domain.StatusActive)}).
		Count(&count).Error
	return count, err
}
