package repositories

import (
	"context"
	"errors"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/core/domain"

	"gorm.io/gorm"
)

// resourceRepository implements ResourceRepository interface
type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

// Create inserts a new resource
func (r *resourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

// GetByID returns a resource by ID
func (r *resourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	var resource models.Resource
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&resource).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// List returns resources, optionally filtered by kind and active flag
func (r *resourceRepository) List(ctx context.Context, kind string, activeOnly bool) ([]models.Resource, error) {
	var resources []models.Resource
	query := r.db.WithContext(ctx).Order("name ASC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&resources).Error
	return resources, err
}

// SetActive toggles a resource's availability for new reservations
func (r *resourceRepository) SetActive(ctx context.Context, id string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Resource{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
