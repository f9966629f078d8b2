// Package circulation implements the lending rules: issuing, overdue
// derivation, returns, and fine computation.
package circulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openshelf/openshelf/internal/entities"
)

// DateOnly truncates a timestamp to its calendar date in UTC. Loan dates are
// compared as whole days, never as instants.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DeriveStatus is the source of truth for a loan's status. The stored column
// is only a cache of this function's result; a returned loan stays returned,
// anything else is overdue once today has passed the due date.
func DeriveStatus(today, dueDate time.Time, stored entities.LoanStatus) entities.LoanStatus {
	if stored == entities.LoanStatusReturned {
		return entities.LoanStatusReturned
	}
	if DateOnly(today).After(DateOnly(dueDate)) {
		return entities.LoanStatusOverdue
	}
	return entities.LoanStatusIssued
}

// OverdueDays returns how many whole days the loan ran past its due date.
// For a returned loan the return date ends the overdue window, otherwise
// today does. Never negative.
func OverdueDays(today, dueDate time.Time, returnDate *time.Time) int {
	end := DateOnly(today)
	if returnDate != nil {
		end = DateOnly(*returnDate)
	}
	days := int(end.Sub(DateOnly(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// FineAmount computes overdueDays × finePerDay, rounded to currency
// precision. The result is snapshotted onto the fine at creation and is
// insensitive to later settings changes.
func FineAmount(overdueDays int, finePerDay decimal.Decimal) decimal.Decimal {
	return finePerDay.Mul(decimal.NewFromInt(int64(overdueDays))).Round(2)
}

// DueDateFor computes the default due date for a loan issued today.
func DueDateFor(issueDate time.Time, loanPeriodDays int) time.Time {
	return DateOnly(issueDate).AddDate(0, 0, loanPeriodDays)
}
