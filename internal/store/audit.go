package store

import (
	"fmt"

	"github.com/meanun/linkshelf/internal/models"
	"gorm.io/gorm"
)

// AppendAudit records a mutating admin action. Audit failures are the
// caller's to log and swallow; they must never block the action itself.
func AppendAudit(db *gorm.DB, actorID int64, action, details string) error {
	entry := models.AuditLog{ActorID: actorID, Action: action, Details: details}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("store: append audit %q: %w", action, err)
	}
	return nil
}

// RecentAudit returns the latest audit entries, newest first.
func RecentAudit(db *gorm.DB, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []models.AuditLog
	if err := db.Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("store: recent audit: %w", err)
	}
	return logs, nil
}
