package repositories

import (
	"context"
	"errors"
	"time"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// strikeRepository implements StrikeRepository interface
type strikeRepository struct {
	db *gorm.DB
}

// NewStrikeRepository creates a new strike repository
func NewStrikeRepository(db *gorm.DB) StrikeRepository {
	return &strikeRepository{db: db}
}

// Transaction runs fn with a repository bound to one database transaction
func (r *strikeRepository) Transaction(ctx context.Context, fn func(tx StrikeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&strikeRepository{db: tx})
	})
}

// CreateRecord inserts a new strike record
func (r *strikeRepository) CreateRecord(ctx context.Context, record *models.StrikeRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetRecord returns a strike record by ID
func (r *strikeRepository) GetRecord(ctx context.Context, id string) (*models.StrikeRecord, error) {
	var record models.StrikeRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListBySubject returns a subject's full strike history, newest first,
// revoked records included
func (r *strikeRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.StrikeRecord, error) {
	var records []models.StrikeRecord
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("issued_at DESC").
		Find(&records).Error
	return records, err
}

// ListActiveBySubject returns a subject's non-revoked strikes. With
// forUpdate the rows are locked; callers must be inside Transaction.
func (r *strikeRepository) ListActiveBySubject(ctx context.Context, subjectID string, forUpdate bool) ([]models.StrikeRecord, error) {
	var records []models.StrikeRecord
	query := r.db.WithContext(ctx).
		Where("subject_id = ? AND revoked_at IS NULL", subjectID).
		Order("issued_at ASC")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.Find(&records).Error
	return records, err
}

// RevokeRecord marks one active strike as revoked. Returns the number
// of rows changed: 0 means the record was missing or already revoked.
func (r *strikeRepository) RevokeRecord(ctx context.Context, id string, revokedBy string, reason string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StrikeRecord{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Updates(map[string]interface{}{
			"revoked_at":    at,
			"revoked_by":    revokedBy,
			"revoke_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// RevokeActiveBySubject revokes every active strike of a subject in
// one statement. Idempotent: a second call changes zero rows.
func (r *strikeRepository) RevokeActiveBySubject(ctx context.Context, subjectID string, revokedBy string, reason string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StrikeRecord{}).
		Where("subject_id = ? AND revoked_at IS NULL", subjectID).
		Updates(map[string]interface{}{
			"revoked_at":    at,
			"revoked_by":    revokedBy,
			"revoke_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// RevokeAllActive revokes every active strike of every subject in one
// statement. Idempotent: a second call changes zero rows.
func (r *strikeRepository) RevokeAllActive(ctx context.Context, revokedBy string, reason string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StrikeRecord{}).
		Where("revoked_at IS NULL").
		Updates(map[string]interface{}{
			"revoked_at":    at,
			"revoked_by":    revokedBy,
			"revoke_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// ListActiveSubjects returns the distinct subjects holding at least
// one active strike
func (r *strikeRepository) ListActiveSubjects(ctx context.Context) ([]string, error) {
	var subjects []string
	err := r.db.WithContext(ctx).
		Model(&models.StrikeRecord{}).
		Where("revoked_at IS NULL").
		Distinct().
		Pluck("subject_id", &subjects).Error
	return subjects, err
}

// GetState returns the derived standing; a subject with no strikes has
// a zero-value state
func (r *strikeRepository) GetState(ctx context.Context, subjectID string) (*models.SubjectStrikeState, error) {
	var state models.SubjectStrikeState
	err := r.db.WithContext(ctx).Where("subject_id = ?", subjectID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.SubjectStrikeState{SubjectID: subjectID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState upserts the derived standing row
func (r *strikeRepository) SaveState(ctx context.Context, state *models.SubjectStrikeState) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"strike_count", "blacklist_until", "updated_at"}),
		}).
		Create(state).Error
}

// ListFlagged returns subjects currently restricted from booking
func (r *strikeRepository) ListFlagged(ctx context.Context, now time.Time) ([]models.SubjectStrikeState, error) {
	var states []models.SubjectStrikeState
	err := r.db.WithContext(ctx).
		Where("blacklist_until IS NOT NULL AND blacklist_until > ?", now).
		Order("blacklist_until DESC").
		Find(&states).Error
	return states, err
}
