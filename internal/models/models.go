// Package models defines the GORM models for the Linkshelf catalog.
package models

import "time"

// Admin is a runtime-added admin. Main admins come from configuration and
// are never stored as rows, so they can never be removed through commands.
type Admin struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

// Title is a catalog entry that groups episodes.
type Title struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex;size:255"`

	// CreatedBy is the user id of the admin who created the title. It is
	// stamped once and kept even if that admin is later removed.
	CreatedBy int64 `gorm:"not null;index"`
	CreatedAt time.Time

	Episodes []Episode `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE"`
}

// Episode is a single named link under a title. Creation order (ID) is the
// canonical episode order.
type Episode struct {
	ID        uint   `gorm:"primaryKey"`
	TitleID   uint   `gorm:"not null;index"`
	Name      string `gorm:"not null;size:255"`
	URL       string `gorm:"not null;type:text"`
	CreatedBy int64  `gorm:"not null"`
	CreatedAt time.Time
}

// AuditLog records a mutating admin action for later review.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	ActorID   int64  `gorm:"not null;index"`
	Action    string `gorm:"not null;size:64"`
	Details   string `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

// UsageLog records a browse-command invocation, used for the monthly
// top-users report.
type UsageLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;index"`
	Command   string `gorm:"not null;size:32"`
	CreatedAt time.Time `gorm:"index"`
}

// TitleView records a user opening a title's episode menu, used for the
// top-titles report.
type TitleView struct {
	ID        uint  `gorm:"primaryKey"`
	TitleID   uint  `gorm:"not null;index"`
	UserID    int64 `gorm:"not null"`
	CreatedAt time.Time
}
