package store

import (
	"errors"
	"fmt"

	"github.com/meanun/linkshelf/internal/models"
	"gorm.io/gorm"
)

// AddAdmin records a runtime-added admin. Main admins live in
// configuration, never in this table.
func AddAdmin(db *gorm.DB, userID int64) error {
	var count int64
	if err := db.Model(&models.Admin{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("store: add admin %d: %w", userID, err)
	}
	if count > 0 {
		return ErrAdminExists
	}
	if err := db.Create(&models.Admin{UserID: userID}).Error; err != nil {
		return fmt.Errorf("store: add admin %d: %w", userID, err)
	}
	return nil
}

// RemoveAdmin deletes a runtime-added admin. Titles and episodes they
// created keep their created_by stamp.
func RemoveAdmin(db *gorm.DB, userID int64) error {
	result := db.Where("user_id = ?", userID).Delete(&models.Admin{})
	if result.Error != nil {
		return fmt.Errorf("store: remove admin %d: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// ListAdmins returns all runtime-added admin ids in ascending order.
func ListAdmins(db *gorm.DB) ([]int64, error) {
	var admins []models.Admin
	if err := db.Order("user_id ASC").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("store: list admins: %w", err)
	}
	ids := make([]int64, len(admins))
	for i, a := range admins {
		ids[i] = a.UserID
	}
	return ids, nil
}

// IsAddedAdmin reports whether userID is a runtime-added admin.
func IsAddedAdmin(db *gorm.DB, userID int64) (bool, error) {
	var admin models.Admin
	err := db.Where("user_id = ?", userID).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: check admin %d: %w", userID, err)
	}
	return true, nil
}
