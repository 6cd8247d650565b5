package db

import (
	"fmt"

	"github.com/meanun/linkshelf/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Admin{},
		&models.Title{},
		&models.Episode{},
		&models.AuditLog{},
		&models.UsageLog{},
		&models.TitleView{},
	}
}

// AutoMigrate creates or updates all catalog tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
