package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meanun/linkshelf/internal/models"
	"gorm.io/gorm"
)

// CreateTitle inserts a new title owned by createdBy. The name must be
// unique; a duplicate returns ErrTitleExists.
func CreateTitle(db *gorm.DB, name string, createdBy int64) (*models.Title, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("store: create title: name is required")
	}

	var count int64
	if err := db.Model(&models.Title{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("store: create title %q: %w", name, err)
	}
	if count > 0 {
		return nil, ErrTitleExists
	}

	title := models.Title{Name: name, CreatedBy: createdBy}
	if err := db.Create(&title).Error; err != nil {
		return nil, fmt.Errorf("store: create title %q: %w", name, err)
	}
	return &title, nil
}

// GetTitle fetches a title by id.
func GetTitle(db *gorm.DB, id uint) (*models.Title, error) {
	var title models.Title
	err := db.First(&title, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTitleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get title %d: %w", id, err)
	}
	return &title, nil
}

// GetTitleByName fetches a title by exact name.
func GetTitleByName(db *gorm.DB, name string) (*models.Title, error) {
	var title models.Title
	err := db.Where("name = ?", strings.TrimSpace(name)).First(&title).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTitleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get title %q: %w", name, err)
	}
	return &title, nil
}

// ListTitles returns all titles in creation order. The stable order keeps
// next/previous menu navigation deterministic while admins add content.
func ListTitles(db *gorm.DB) ([]models.Title, error) {
	var titles []models.Title
	if err := db.Order("id ASC").Find(&titles).Error; err != nil {
		return nil, fmt.Errorf("store: list titles: %w", err)
	}
	return titles, nil
}

// SearchTitles returns titles whose name contains the keyword,
// case-insensitively, in creation order.
func SearchTitles(db *gorm.DB, keyword string) ([]models.Title, error) {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return nil, fmt.Errorf("store: search titles: keyword is required")
	}
	var titles []models.Title
	pattern := "%" + strings.ToLower(kw) + "%"
	if err := db.Where("LOWER(name) LIKE ?", pattern).Order("id ASC").Find(&titles).Error; err != nil {
		return nil, fmt.Errorf("store: search titles %q: %w", keyword, err)
	}
	return titles, nil
}

// RenameTitle updates a title's display name.
func RenameTitle(db *gorm.DB, id uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("store: rename title: name is required")
	}
	result := db.Model(&models.Title{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return fmt.Errorf("store: rename title %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTitleNotFound
	}
	return nil
}

// DeleteTitle removes a title and all of its episodes in one transaction.
// Either everything goes or nothing does, so orphaned episodes are never
// observable.
func DeleteTitle(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("title_id = ?", id).Delete(&models.Episode{}).Error; err != nil {
			return fmt.Errorf("delete episodes: %w", err)
		}
		result := tx.Delete(&models.Title{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete title: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTitleNotFound
		}
		return nil
	})
	if errors.Is(err, ErrTitleNotFound) {
		return ErrTitleNotFound
	}
	if err != nil {
		return fmt.Errorf("store: delete title %d: %w", id, err)
	}
	return nil
}

// CountTitles returns the number of titles in the catalog.
func CountTitles(db *gorm.DB) (int64, error) {
	var count int64
	if err := db.Model(&models.Title{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("store: count titles: %w", err)
	}
	return count, nil
}
