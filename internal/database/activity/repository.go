// Package activity provides database operations for the audit trail.
package activity

import (
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles activity log database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new activity repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record appends an activity entry.
func (r *Repository) Record(entry *entities.ActivityEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Create(entry).Error
}

// ListEntries retrieves paginated entries, newest first, optionally
// filtered by action.
func (r *Repository) ListEntries(action entities.ActivityAction, limit, offset int) ([]entities.ActivityEntry, int64, error) {
	var entries []entities.ActivityEntry
	var total int64

	query := r.db.Model(&entities.ActivityEntry{})
	if action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, total, err
}

// ListEntriesSince retrieves all entries recorded after the given time.
func (r *Repository) ListEntriesSince(since time.Time) ([]entities.ActivityEntry, error) {
	var entries []entities.ActivityEntry
	err := r.db.Preload("User").
		Where("created_at > ?", since).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}
