// Package circulation provides database operations for loans and fines.
//
// Issue and return both mutate the availability counter of a book row that
// concurrent requests may also be touching, so every read-check-mutate
// sequence here runs inside one transaction with guarded counter updates.
package circulation

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrLoanNotFound      = errors.New("issued book record not found")
	ErrAlreadyIssued     = errors.New("student already has this book issued")
	ErrNoCopiesAvailable = errors.New("no available copies")
	ErrAlreadyReturned   = errors.New("book has already been returned")
	ErrFineNotFound      = errors.New("fine not found")
	ErrFineSettled       = errors.New("fine has already been settled")
)

var activeStatuses = []entities.LoanStatus{entities.LoanStatusIssued, entities.LoanStatusOverdue}

// Repository handles all circulation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new circulation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// IssueBook creates the loan and takes one copy off the shelf atomically.
// The guarded decrement rejects the issue when a concurrent request grabbed
// the last copy between the caller's check and this write.
func (r *Repository) IssueBook(loan *entities.IssuedBook) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&entities.IssuedBook{}).
			Where("student_id = ? AND book_id = ? AND status IN ?", loan.StudentID, loan.BookID, activeStatuses).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadyIssued
		}

		result := tx.Model(&entities.Book{}).
			Where("id = ? AND available_copies > 0", loan.BookID).
			Update("available_copies", gorm.Expr("available_copies - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&entities.Book{}).Where("id = ?", loan.BookID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return ErrBookNotFound
			}
			return ErrNoCopiesAvailable
		}

		loan.Status = entities.LoanStatusIssued
		return tx.Create(loan).Error
	})
}

// ReturnBook closes the loan, puts the copy back on the shelf, and persists
// the fine produced by makeFine, all in one transaction. makeFine receives
// the loan as stored and returns nil when no fine is owed.
func (r *Repository) ReturnBook(loanID uint, returnDate time.Time, makeFine func(loan *entities.IssuedBook) *entities.Fine) (*entities.IssuedBook, *entities.Fine, error) {
	var loan entities.IssuedBook
	var fine *entities.Fine

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Student").Preload("Book").First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}
		if loan.Status == entities.LoanStatusReturned {
			return ErrAlreadyReturned
		}

		loan.ReturnDate = &returnDate
		loan.Status = entities.LoanStatusReturned
		err := tx.Model(&entities.IssuedBook{}).Where("id = ?", loan.ID).Updates(map[string]any{
			"return_date": returnDate,
			"status":      entities.LoanStatusReturned,
		}).Error
		if err != nil {
			return err
		}

		// The increment is capped at total_copies. A saturated counter is
		// not an error: shrinking total_copies while loans are open leaves
		// no shelf slot for the returned copy, and the return must still
		// commit. Double returns are caught by the status check above.
		err = tx.Model(&entities.Book{}).
			Where("id = ? AND available_copies < total_copies", loan.BookID).
			Update("available_copies", gorm.Expr("available_copies + 1")).Error
		if err != nil {
			return err
		}

		if makeFine != nil {
			if fine = makeFine(&loan); fine != nil {
				if err := tx.Create(fine).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &loan, fine, nil
}

// RefreshOverdue flips issued loans past their due date to overdue.
// This is a cache refresh of the derived status before list queries;
// the stored value is never treated as the source of truth.
func (r *Repository) RefreshOverdue(today time.Time) (int64, error) {
	result := r.db.Model(&entities.IssuedBook{}).
		Where("status = ? AND due_date < ?", entities.LoanStatusIssued, today).
		Update("status", entities.LoanStatusOverdue)
	return result.RowsAffected, result.Error
}

// GetLoanByID retrieves a loan with its student, book, and issuing staff.
func (r *Repository) GetLoanByID(id uint) (*entities.IssuedBook, error) {
	var loan entities.IssuedBook
	err := r.db.Preload("Student").Preload("Book").Preload("IssuedBy").First(&loan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListLoans returns loans filtered by status and a search term matching the
// student's name or the book's title/code, newest issue first.
func (r *Repository) ListLoans(status entities.LoanStatus, search string) ([]entities.IssuedBook, error) {
	var loans []entities.IssuedBook
	query := r.db.Preload("Student").Preload("Book").Preload("IssuedBy").
		Joins("JOIN users ON users.id = issued_books.student_id").
		Joins("JOIN books ON books.id = issued_books.book_id").
		Order("issued_books.issue_date DESC, issued_books.id DESC")
	if status != "" {
		query = query.Where("issued_books.status = ?", status)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(users.first_name) LIKE LOWER(?) OR LOWER(users.last_name) LIKE LOWER(?) OR LOWER(users.username) LIKE LOWER(?) OR LOWER(books.title) LIKE LOWER(?) OR books.code LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	err := query.Find(&loans).Error
	return loans, err
}

// ListLoansForStudent returns all loans of one student, newest first.
func (r *Repository) ListLoansForStudent(studentID uint) ([]entities.IssuedBook, error) {
	var loans []entities.IssuedBook
	err := r.db.Preload("Book").
		Where("student_id = ?", studentID).
		Order("issue_date DESC, id DESC").
		Find(&loans).Error
	return loans, err
}

// HasActiveLoan reports whether the student currently holds the book.
func (r *Repository) HasActiveLoan(studentID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.IssuedBook{}).
		Where("student_id = ? AND book_id = ? AND status IN ?", studentID, bookID, activeStatuses).
		Count(&count).Error
	return count > 0, err
}

// CountLoansByStatus returns the number of loans in the given statuses.
func (r *Repository) CountLoansByStatus(statuses ...entities.LoanStatus) (int64, error) {
	var count int64
	err := r.db.Model(&entities.IssuedBook{}).Where("status IN ?", statuses).Count(&count).Error
	return count, err
}

// GetFineByID retrieves a fine with its student and loan.
func (r *Repository) GetFineByID(id uint) (*entities.Fine, error) {
	var fine entities.Fine
	err := r.db.Preload("Student").Preload("IssuedBook").Preload("IssuedBook.Book").
		Preload("SettledBy").First(&fine, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

// GetFineForLoan retrieves the fine attached to a loan, if any.
func (r *Repository) GetFineForLoan(loanID uint) (*entities.Fine, error) {
	var fine entities.Fine
	err := r.db.Preload("Student").Where("issued_book_id = ?", loanID).First(&fine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

// ListFines returns fines filtered by status and a search term matching the
// student's name or the book title, newest first.
func (r *Repository) ListFines(status entities.FineStatus, search string) ([]entities.Fine, error) {
	var fines []entities.Fine
	query := r.db.Preload("Student").Preload("IssuedBook").Preload("IssuedBook.Book").
		Preload("SettledBy").
		Joins("JOIN users ON users.id = fines.student_id").
		Joins("JOIN issued_books ON issued_books.id = fines.issued_book_id").
		Joins("JOIN books ON books.id = issued_books.book_id").
		Order("fines.created_at DESC, fines.id DESC")
	if status != "" {
		query = query.Where("fines.status = ?", status)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(users.first_name) LIKE LOWER(?) OR LOWER(users.last_name) LIKE LOWER(?) OR LOWER(books.title) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	err := query.Find(&fines).Error
	return fines, err
}

// ListUnpaidFinesForStudent returns a student's outstanding fines.
func (r *Repository) ListUnpaidFinesForStudent(studentID uint) ([]entities.Fine, error) {
	var fines []entities.Fine
	err := r.db.Preload("IssuedBook").Preload("IssuedBook.Book").
		Where("student_id = ? AND status = ?", studentID, entities.FineStatusUnpaid).
		Order("created_at DESC").
		Find(&fines).Error
	return fines, err
}

// SettleFine moves an unpaid fine to paid or waived, stamping the actor and
// time. Settling an already paid or waived fine is rejected; the amount is
// never touched.
func (r *Repository) SettleFine(id uint, status entities.FineStatus, actorID uint, settledAt time.Time) (*entities.Fine, error) {
	var fine entities.Fine
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Fine{}).
			Where("id = ? AND status = ?", id, entities.FineStatusUnpaid).
			Updates(map[string]any{
				"status":        status,
				"settled_by_id": actorID,
				"settled_at":    settledAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Distinguish a missing fine from one already settled.
			if err := tx.First(&fine, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrFineNotFound
				}
				return err
			}
			return ErrFineSettled
		}
		return tx.Preload("Student").Preload("SettledBy").First(&fine, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

// CountFinesByStatus returns the number of fines in the given status.
func (r *Repository) CountFinesByStatus(status entities.FineStatus) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Fine{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
