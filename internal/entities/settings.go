package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// FineSettingsID is the primary key of the single fine settings row.
// All reads and writes go through the settings repository, which falls
// back to the defaults below when the row does not exist yet.
const FineSettingsID = uint(1)

const DefaultLoanPeriodDays = 14

// DefaultFinePerDay is the charge per overdue day when no settings row exists.
var DefaultFinePerDay = decimal.NewFromFloat(2.00)

type FineSettings struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	FinePerDay     decimal.Decimal `gorm:"type:decimal(5,2)" json:"fine_per_day"`
	LoanPeriodDays int             `gorm:"default:14" json:"loan_period_days"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (FineSettings) TableName() string {
	return "fine_settings"
}
