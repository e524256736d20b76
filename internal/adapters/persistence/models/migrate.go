package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Resource{},
		&Reservation{},
		&StrikeRecord{},
		&SubjectStrikeState{},
	)
}
