package circulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/openshelf/openshelf/internal/activity"
	circulationdb "github.com/openshelf/openshelf/internal/database/circulation"
	settingsdb "github.com/openshelf/openshelf/internal/database/settings"
	usersdb "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrNotAStudent = errors.New("books can only be issued to students")
	ErrInvalidDue  = errors.New("due date cannot be before the issue date")
)

// Service orchestrates lending operations: it resolves settings, applies the
// rules, and delegates the transactional writes to the repository. Activity
// entries are recorded outside the transactions and never fail an operation.
type Service struct {
	loans    *circulationdb.Repository
	users    *usersdb.Repository
	settings *settingsdb.Repository
	activity *activity.Service

	now func() time.Time
}

// NewService creates a circulation service.
func NewService(loans *circulationdb.Repository, users *usersdb.Repository, settings *settingsdb.Repository, activityLog *activity.Service) *Service {
	return &Service{
		loans:    loans,
		users:    users,
		settings: settings,
		activity: activityLog,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests use this to control "today".
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// IssueInput carries the form fields of an issue request.
type IssueInput struct {
	StudentID uint
	BookID    uint
	DueDate   *time.Time
	Notes     string
}

// Issue lends a book to a student. The due date defaults to the configured
// loan period; the duplicate-loan and availability checks run inside the
// repository transaction.
func (s *Service) Issue(actor *entities.User, input IssueInput, ipAddress string) (*entities.IssuedBook, error) {
	student, err := s.users.GetUserByID(input.StudentID)
	if err != nil {
		return nil, err
	}
	if student.Role != entities.UserRoleStudent {
		return nil, ErrNotAStudent
	}

	today := DateOnly(s.now())

	dueDate := time.Time{}
	if input.DueDate != nil {
		dueDate = DateOnly(*input.DueDate)
		if dueDate.Before(today) {
			return nil, ErrInvalidDue
		}
	} else {
		cfg, err := s.settings.GetFineSettings()
		if err != nil {
			return nil, fmt.Errorf("failed to load fine settings: %w", err)
		}
		dueDate = DueDateFor(today, cfg.LoanPeriodDays)
	}

	loan := &entities.IssuedBook{
		StudentID: input.StudentID,
		BookID:    input.BookID,
		IssueDate: today,
		DueDate:   dueDate,
		Notes:     input.Notes,
	}
	if actor != nil {
		actorID := actor.ID
		loan.IssuedByID = &actorID
	}

	if err := s.loans.IssueBook(loan); err != nil {
		return nil, err
	}

	issued, err := s.loans.GetLoanByID(loan.ID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor, entities.ActivityBookIssued,
		fmt.Sprintf("Issued %q to %s (due %s)", issued.Book.Title, issued.Student.FullName(), dueDate.Format("2006-01-02")),
		ipAddress)

	return issued, nil
}

// Return closes a loan, restores availability, and creates a fine when the
// book comes back late. The fine-per-day rate is read fresh at return time.
func (s *Service) Return(actor *entities.User, loanID uint, ipAddress string) (*entities.IssuedBook, *entities.Fine, error) {
	cfg, err := s.settings.GetFineSettings()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load fine settings: %w", err)
	}

	today := DateOnly(s.now())

	loan, fine, err := s.loans.ReturnBook(loanID, today, func(loan *entities.IssuedBook) *entities.Fine {
		overdueDays := OverdueDays(today, loan.DueDate, &today)
		if overdueDays <= 0 {
			return nil
		}
		return &entities.Fine{
			IssuedBookID: loan.ID,
			StudentID:    loan.StudentID,
			Amount:       FineAmount(overdueDays, cfg.FinePerDay),
			OverdueDays:  overdueDays,
			FinePerDay:   cfg.FinePerDay,
			Status:       entities.FineStatusUnpaid,
		}
	})
	if err != nil {
		return nil, nil, err
	}

	description := fmt.Sprintf("Returned %q from %s", loan.Book.Title, loan.Student.FullName())
	if fine != nil {
		description += fmt.Sprintf(" with fine %s (%d days overdue)", fine.Amount.StringFixed(2), fine.OverdueDays)
	}
	s.activity.Record(actor, entities.ActivityBookReturned, description, ipAddress)

	return loan, fine, nil
}

// ListIssued refreshes the persisted overdue flags, then returns loans
// matching the filters.
func (s *Service) ListIssued(status entities.LoanStatus, search string) ([]entities.IssuedBook, error) {
	if _, err := s.loans.RefreshOverdue(DateOnly(s.now())); err != nil {
		return nil, fmt.Errorf("failed to refresh overdue statuses: %w", err)
	}
	return s.loans.ListLoans(status, search)
}

// LoanDetail returns a loan together with its fine, if one exists.
func (s *Service) LoanDetail(loanID uint) (*entities.IssuedBook, *entities.Fine, error) {
	loan, err := s.loans.GetLoanByID(loanID)
	if err != nil {
		return nil, nil, err
	}
	fine, err := s.loans.GetFineForLoan(loanID)
	if err != nil {
		if errors.Is(err, circulationdb.ErrFineNotFound) {
			return loan, nil, nil
		}
		return nil, nil, err
	}
	return loan, fine, nil
}

// MarkFinePaid settles a fine as paid. Settling twice is rejected; the
// amount never changes.
func (s *Service) MarkFinePaid(actor *entities.User, fineID uint, ipAddress string) (*entities.Fine, error) {
	fine, err := s.loans.SettleFine(fineID, entities.FineStatusPaid, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	s.activity.Record(actor, entities.ActivityFinePaid,
		fmt.Sprintf("Marked fine of %s as paid for %s", fine.Amount.StringFixed(2), fine.Student.FullName()),
		ipAddress)
	return fine, nil
}

// WaiveFine settles a fine as waived without payment.
func (s *Service) WaiveFine(actor *entities.User, fineID uint, ipAddress string) (*entities.Fine, error) {
	fine, err := s.loans.SettleFine(fineID, entities.FineStatusWaived, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	s.activity.Record(actor, entities.ActivityFineWaived,
		fmt.Sprintf("Waived fine of %s for %s", fine.Amount.StringFixed(2), fine.Student.FullName()),
		ipAddress)
	return fine, nil
}

// ListFines returns fines matching the filters.
func (s *Service) ListFines(status entities.FineStatus, search string) ([]entities.Fine, error) {
	return s.loans.ListFines(status, search)
}

// MyBooks returns a student's own loans (overdue flags refreshed) and
// outstanding fines.
func (s *Service) MyBooks(studentID uint) ([]entities.IssuedBook, []entities.Fine, error) {
	if _, err := s.loans.RefreshOverdue(DateOnly(s.now())); err != nil {
		return nil, nil, fmt.Errorf("failed to refresh overdue statuses: %w", err)
	}
	loans, err := s.loans.ListLoansForStudent(studentID)
	if err != nil {
		return nil, nil, err
	}
	fines, err := s.loans.ListUnpaidFinesForStudent(studentID)
	if err != nil {
		return nil, nil, err
	}
	return loans, fines, nil
}
