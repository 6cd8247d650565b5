package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meanun/linkshelf/internal/models"
	"gorm.io/gorm"
)

// AddEpisode appends a single episode to a title.
func AddEpisode(db *gorm.DB, titleID uint, name, url string, createdBy int64) (*models.Episode, error) {
	if _, err := GetTitle(db, titleID); err != nil {
		return nil, err
	}
	ep := models.Episode{TitleID: titleID, Name: name, URL: url, CreatedBy: createdBy}
	if err := db.Create(&ep).Error; err != nil {
		return nil, fmt.Errorf("store: add episode to title %d: %w", titleID, err)
	}
	return &ep, nil
}

// AddEpisodeBatch inserts episodes in input order inside one transaction.
// A failure on any row rolls back the whole batch, so a partially written
// bulk commit is never observable.
func AddEpisodeBatch(db *gorm.DB, titleID uint, pairs [][2]string, createdBy int64) ([]models.Episode, error) {
	if _, err := GetTitle(db, titleID); err != nil {
		return nil, err
	}

	eps := make([]models.Episode, 0, len(pairs))
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, p := range pairs {
			if strings.TrimSpace(p[0]) == "" || strings.TrimSpace(p[1]) == "" {
				return fmt.Errorf("empty name or url at position %d", len(eps)+1)
			}
			ep := models.Episode{TitleID: titleID, Name: p[0], URL: p[1], CreatedBy: createdBy}
			if err := tx.Create(&ep).Error; err != nil {
				return fmt.Errorf("insert %q: %w", p[0], err)
			}
			eps = append(eps, ep)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: batch add to title %d: %w", titleID, err)
	}
	return eps, nil
}

// GetEpisode fetches an episode by id.
func GetEpisode(db *gorm.DB, id uint) (*models.Episode, error) {
	var ep models.Episode
	err := db.First(&ep, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEpisodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get episode %d: %w", id, err)
	}
	return &ep, nil
}

// ListEpisodes returns a title's episodes in creation order.
func ListEpisodes(db *gorm.DB, titleID uint) ([]models.Episode, error) {
	var eps []models.Episode
	if err := db.Where("title_id = ?", titleID).Order("id ASC").Find(&eps).Error; err != nil {
		return nil, fmt.Errorf("store: list episodes of title %d: %w", titleID, err)
	}
	return eps, nil
}

// PrevEpisodeID returns the id of the episode before episodeID within the
// same title, or 0 when episodeID is the first.
func PrevEpisodeID(db *gorm.DB, titleID, episodeID uint) (uint, error) {
	var ep models.Episode
	err := db.Where("title_id = ? AND id < ?", titleID, episodeID).
		Order("id DESC").First(&ep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: prev episode of %d: %w", episodeID, err)
	}
	return ep.ID, nil
}

// NextEpisodeID returns the id of the episode after episodeID within the
// same title, or 0 when episodeID is the last.
func NextEpisodeID(db *gorm.DB, titleID, episodeID uint) (uint, error) {
	var ep models.Episode
	err := db.Where("title_id = ? AND id > ?", titleID, episodeID).
		Order("id ASC").First(&ep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: next episode of %d: %w", episodeID, err)
	}
	return ep.ID, nil
}

// UpdateEpisode replaces an episode's name and URL.
func UpdateEpisode(db *gorm.DB, id uint, name, url string) error {
	result := db.Model(&models.Episode{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "url": url})
	if result.Error != nil {
		return fmt.Errorf("store: update episode %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEpisodeNotFound
	}
	return nil
}

// DeleteEpisode removes a single episode.
func DeleteEpisode(db *gorm.DB, id uint) error {
	result := db.Delete(&models.Episode{}, id)
	if result.Error != nil {
		return fmt.Errorf("store: delete episode %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEpisodeNotFound
	}
	return nil
}

// CountEpisodes returns the number of episodes in the catalog.
func CountEpisodes(db *gorm.DB) (int64, error) {
	var count int64
	if err := db.Model(&models.Episode{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("store: count episodes: %w", err)
	}
	return count, nil
}
