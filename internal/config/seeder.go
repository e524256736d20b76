package config

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/core/domain"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedDemoResources(); err != nil {
		log.Printf("⚠️ Resource seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedDemoResources seeds a small catalog so a fresh dev database has
// something to reserve. Production catalogs are managed through the
// admin surface.
func (s *Seeder) seedDemoResources() error {
	var count int64
	s.db.Model(&models.Resource{}).Count(&count)
	if count > 0 {
		return nil // Catalog already present
	}

	resources := []models.Resource{
		{
			ID:          uuid.New().String(),
			Name:        "Canon EOS R6",
			Kind:        string(domain.KindEquipment),
			Granularity: string(domain.GranularityDay),
			Department:  "Media Lab",
			IsActive:    true,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Zoom H6 Recorder",
			Kind:        string(domain.KindEquipment),
			Granularity: string(domain.GranularityDay),
			Department:  "Media Lab",
			IsActive:    true,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Edit Suite A",
			Kind:        string(domain.KindRoom),
			Granularity: string(domain.GranularityMinute),
			Department:  "Media Lab",
			IsActive:    true,
		},
	}

	for _, resource := range resources {
		if err := s.db.Create(&resource).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d demo resources", len(resources))
	return nil
}
