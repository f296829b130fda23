package database

import (
	"fmt"

	"tidepool/internal/models"

	"gorm.io/gorm"
)

// RegisteredModels lists every persisted model, in dependency order.
// Both AutoMigrate and test setups iterate this slice so the two can't drift.
func RegisteredModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Relationship{},
		&models.Post{},
	}
}

// Migrate applies the schema for all registered models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(RegisteredModels()...); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}
	return nil
}
