// Package settings provides the single accessor for fine settings.
//
// The settings live in one keyed row; when it is absent the defaults from
// the entities package apply. Callers never query the table directly.
package settings

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles fine settings reads and writes.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetFineSettings returns the stored settings, or the defaults
// (2.00 per day, 14 day loans) when no row exists yet.
func (r *Repository) GetFineSettings() (*entities.FineSettings, error) {
	var s entities.FineSettings
	err := r.db.First(&s, entities.FineSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entities.FineSettings{
			ID:             entities.FineSettingsID,
			FinePerDay:     entities.DefaultFinePerDay,
			LoanPeriodDays: entities.DefaultLoanPeriodDays,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateFineSettings writes the singleton row, creating it on first use.
func (r *Repository) UpdateFineSettings(finePerDay decimal.Decimal, loanPeriodDays int) (*entities.FineSettings, error) {
	s := entities.FineSettings{
		ID:             entities.FineSettingsID,
		FinePerDay:     finePerDay,
		LoanPeriodDays: loanPeriodDays,
	}
	if err := r.db.Save(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
