package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusIssued   LoanStatus = "issued"
	LoanStatusReturned LoanStatus = "returned"
	LoanStatusOverdue  LoanStatus = "overdue"
)

// IsActive reports whether the loan still holds a copy of the book.
func (s LoanStatus) IsActive() bool {
	return s == LoanStatusIssued || s == LoanStatusOverdue
}

type IssuedBook struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	StudentID  uint       `gorm:"index" json:"student_id"`
	Student    User       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	BookID     uint       `gorm:"index" json:"book_id"`
	Book       Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	IssuedByID *uint      `gorm:"index" json:"issued_by_id,omitempty"`
	IssuedBy   *User      `gorm:"foreignKey:IssuedByID" json:"issued_by,omitempty"`
	IssueDate  time.Time  `gorm:"index" json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     LoanStatus `gorm:"index;size:20;default:'issued'" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type FineStatus string

const (
	FineStatusUnpaid FineStatus = "unpaid"
	FineStatusPaid   FineStatus = "paid"
	FineStatusWaived FineStatus = "waived"
)

// IsSettled reports whether the fine reached a terminal state.
func (s FineStatus) IsSettled() bool {
	return s == FineStatusPaid || s == FineStatusWaived
}

type Fine struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	IssuedBookID uint            `gorm:"uniqueIndex" json:"issued_book_id"`
	IssuedBook   IssuedBook      `gorm:"foreignKey:IssuedBookID" json:"issued_book,omitempty"`
	StudentID    uint            `gorm:"index" json:"student_id"`
	Student      User            `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	OverdueDays  int             `gorm:"default:0" json:"overdue_days"`
	FinePerDay   decimal.Decimal `gorm:"type:decimal(5,2)" json:"fine_per_day"`
	Status       FineStatus      `gorm:"index;size:20;default:'unpaid'" json:"status"`
	SettledByID  *uint           `gorm:"index" json:"settled_by_id,omitempty"`
	SettledBy    *User           `gorm:"foreignKey:SettledByID" json:"settled_by,omitempty"`
	SettledAt    *time.Time      `json:"settled_at,omitempty"`
	Remarks      string          `gorm:"type:text" json:"remarks,omitempty"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

func (IssuedBook) TableName() string {
	return "issued_books"
}

func (Fine) TableName() string {
	return "fines"
}
