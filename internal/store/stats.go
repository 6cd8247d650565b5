package store

import (
	"fmt"
	"time"

	"github.com/meanun/linkshelf/internal/models"
	"gorm.io/gorm"
)

// TitleUpdateCount reports how many episodes a title gained in a period.
type TitleUpdateCount struct {
	TitleID   uint
	TitleName string
	Added     int64
}

// UpdateCountsSince returns, per title, the number of episodes added at or
// after since, most active titles first.
func UpdateCountsSince(db *gorm.DB, since time.Time) ([]TitleUpdateCount, error) {
	var rows []TitleUpdateCount
	err := db.Model(&models.Episode{}).
		Select("episodes.title_id AS title_id, titles.name AS title_name, COUNT(*) AS added").
		Joins("JOIN titles ON titles.id = episodes.title_id").
		Where("episodes.created_at >= ?", since).
		Group("episodes.title_id, titles.name").
		Order("added DESC, title_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: update counts since %s: %w", since.Format(time.RFC3339), err)
	}
	return rows, nil
}

// TitleLastUpdate holds the freshest episode timestamp for a title.
type TitleLastUpdate struct {
	TitleName  string
	LastUpdate time.Time
	TotalLinks int64
}

// LastUpdateForTitle returns when a title last gained an episode and how
// many links it has. TotalLinks of zero means no episodes yet.
func LastUpdateForTitle(db *gorm.DB, titleID uint) (*TitleLastUpdate, error) {
	title, err := GetTitle(db, titleID)
	if err != nil {
		return nil, err
	}

	var stat struct {
		Last  *time.Time
		Total int64
	}
	err = db.Model(&models.Episode{}).
		Select("MAX(created_at) AS last, COUNT(*) AS total").
		Where("title_id = ?", titleID).
		Scan(&stat).Error
	if err != nil {
		return nil, fmt.Errorf("store: last update for title %d: %w", titleID, err)
	}

	out := &TitleLastUpdate{TitleName: title.Name, TotalLinks: stat.Total}
	if stat.Last != nil {
		out.LastUpdate = *stat.Last
	}
	return out, nil
}

// DuplicateLink describes one episode using a URL shared with others.
type DuplicateLink struct {
	URL         string
	TitleName   string
	EpisodeName string
	Uses        int64
}

// DuplicateLinks lists every episode whose URL appears more than once in
// the catalog, grouped by URL.
func DuplicateLinks(db *gorm.DB) ([]DuplicateLink, error) {
	var rows []DuplicateLink
	err := db.Model(&models.Episode{}).
		Select("episodes.url AS url, titles.name AS title_name, episodes.name AS episode_name, dup.uses AS uses").
		Joins("JOIN titles ON titles.id = episodes.title_id").
		Joins("JOIN (SELECT url, COUNT(*) AS uses FROM episodes GROUP BY url HAVING COUNT(*) > 1) dup ON dup.url = episodes.url").
		Order("episodes.url ASC, episodes.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: duplicate links: %w", err)
	}
	return rows, nil
}

// EpisodeLink pairs an episode with its title name for link reports.
type EpisodeLink struct {
	EpisodeID   uint
	EpisodeName string
	TitleName   string
	URL         string
}

// RecentLinks returns the newest episode links, newest first, capped at limit.
func RecentLinks(db *gorm.DB, limit int) ([]EpisodeLink, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []EpisodeLink
	err := db.Model(&models.Episode{}).
		Select("episodes.id AS episode_id, episodes.name AS episode_name, titles.name AS title_name, episodes.url AS url").
		Joins("JOIN titles ON titles.id = episodes.title_id").
		Order("episodes.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: recent links: %w", err)
	}
	return rows, nil
}

// AddView records a user opening a title's episode menu.
func AddView(db *gorm.DB, titleID uint, userID int64) error {
	if err := db.Create(&models.TitleView{TitleID: titleID, UserID: userID}).Error; err != nil {
		return fmt.Errorf("store: add view title %d: %w", titleID, err)
	}
	return nil
}

// TitleViewCount reports how often a title has been opened.
type TitleViewCount struct {
	TitleName string
	Views     int64
}

// TopTitles returns the most-opened titles, capped at limit.
func TopTitles(db *gorm.DB, limit int) ([]TitleViewCount, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []TitleViewCount
	err := db.Model(&models.TitleView{}).
		Select("titles.name AS title_name, COUNT(*) AS views").
		Joins("JOIN titles ON titles.id = title_views.title_id").
		Group("titles.name").
		Order("views DESC, title_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: top titles: %w", err)
	}
	return rows, nil
}

// AddUsage records one invocation of a tracked browse command.
func AddUsage(db *gorm.DB, userID int64, command string) error {
	if err := db.Create(&models.UsageLog{UserID: userID, Command: command}).Error; err != nil {
		return fmt.Errorf("store: add usage %q: %w", command, err)
	}
	return nil
}

// UserUsageCount reports a user's command usage in a period.
type UserUsageCount struct {
	UserID int64
	Uses   int64
}

// TopUsersForMonth returns the heaviest users of a command within the
// calendar month [monthStart, monthEnd), capped at limit.
func TopUsersForMonth(db *gorm.DB, command string, monthStart, monthEnd time.Time, limit int) ([]UserUsageCount, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []UserUsageCount
	err := db.Model(&models.UsageLog{}).
		Select("user_id, COUNT(*) AS uses").
		Where("command = ? AND created_at >= ? AND created_at < ?", command, monthStart, monthEnd).
		Group("user_id").
		Order("uses DESC, user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: top users for %q: %w", command, err)
	}
	return rows, nil
}
