package circulation

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
	booksdb "github.com/openshelf/openshelf/internal/database/books"
	usersdb "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupCirculationTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()

	dbPath := "./test_circulation_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func createTestStudent(t *testing.T, db *database.Database, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     entities.UserRoleStudent,
	}
	require.NoError(t, usersdb.NewRepository(db.DB).CreateUser(user))
	return user
}

func createTestBook(t *testing.T, db *database.Database, title string, copies int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:           title,
		Author:          "Test Author",
		ISBN:            "isbn-" + title,
		TotalCopies:     copies,
		AvailableCopies: copies,
	}
	require.NoError(t, booksdb.NewRepository(db.DB).CreateBook(book))
	return book
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRepository_IssueBook(t *testing.T) {
	t.Run("issues a copy and decrements availability", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		student := createTestStudent(t, db, "alice")
		book := createTestBook(t, db, "Dune", 2)

		loan := &entities.IssuedBook{
			StudentID: student.ID,
			BookID:    book.ID,
			IssueDate: day(2026, 3, 1),
			DueDate:   day(2026, 3, 15),
		}
		require.NoError(t, repo.IssueBook(loan))
		assert.NotZero(t, loan.ID)
		assert.Equal(t, entities.LoanStatusIssued, loan.Status)

		updated, err := booksdb.NewRepository(db.DB).GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.AvailableCopies)
	})

	t.Run("rejects issue when no copies remain", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		alice := createTestStudent(t, db, "alice")
		bob := createTestStudent(t, db, "bob")
		book := createTestBook(t, db, "Dune", 1)

		first := &entities.IssuedBook{StudentID: alice.ID, BookID: book.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 15)}
		require.NoError(t, repo.IssueBook(first))

		second := &entities.IssuedBook{StudentID: bob.ID, BookID: book.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 15)}
		err := repo.IssueBook(second)
		assert.ErrorIs(t, err, ErrNoCopiesAvailable)

		updated, err := booksdb.NewRepository(db.DB).GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.AvailableCopies)
	})

	t.Run("unknown book", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		student := createTestStudent(t, db, "alice")

		loan := &entities.IssuedBook{
			StudentID: student.ID,
			BookID:    9999,
			IssueDate: day(2026, 3, 1),
			DueDate:   day(2026, 3, 15),
		}
		assert.ErrorIs(t, repo.IssueBook(loan), ErrBookNotFound)
	})

	t.Run("rejects a second active loan of the same book to the same student", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		student := createTestStudent(t, db, "alice")
		book := createTestBook(t, db, "Dune", 3)

		first := &entities.IssuedBook{StudentID: student.ID, BookID: book.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 15)}
		require.NoError(t, repo.IssueBook(first))

		second := &entities.IssuedBook{StudentID: student.ID, BookID: book.ID, IssueDate: day(2026, 3, 2), DueDate: day(2026, 3, 16)}
		err := repo.IssueBook(second)
		assert.ErrorIs(t, err, ErrAlreadyIssued)
	})
}

func TestRepository_ReturnBook(t *testing.T) {
	noFine := func(loan *entities.IssuedBook) *entities.Fine { return nil }

	t.Run("closes the loan and restores availability", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		student := createTestStudent(t, db, "alice")
		book := createTestBook(t, db, "Dune", 1)

		loan := &entities.IssuedBook{StudentID: student.ID, BookID: book.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 15)}
		require.NoError(t, repo.IssueBook(loan))

		returned, fine, err := repo.ReturnBook(loan.ID, day(2026, 3, 10), noFine)
		require.NoError(t, err)
		assert.Nil(t, fine)
		assert.Equal(t, entities.LoanStatusReturned, returned.Status)
		require.NotNil(t, returned.ReturnDate)
		assert.Equal(t, day(2026, 3, 10), *returned.ReturnDate)

		updated, err := booksdb.NewRepository(db.DB).GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.AvailableCopies)
	})

	t.Run("persists the fine produced by the callback", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		student := createTestStudent(t, db, "alice")
		book := createTestBook(t, db, "Dune", 1)

		loan := &entities.IssuedBook{StudentID: student.ID, BookID: book.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 15)}
		require.NoError(t, repo.IssueBook(loan))

		_, fine, err := repo.ReturnBook(loan.ID, day(2026, 3, 18), func(l *entities.IssuedBook) *entities.Fine {
			return &entities.Fine{
				IssuedBookID: l.ID,
				StudentID:    l.StudentID,
				Amount:       decimal.NewFromFloat(6.00),
				OverdueDays:  3,
				FinePerDay:   decimal.NewFromFloat(2.00),
				Status:       entities.FineStatusUnpaid,
			}
		})
		require.NoError(t, err)
		require.NotNil(t, fine)
		assert.NotZero(t, fine.ID)

		stored, err := repo.GetFineForLoan(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, "6.00", stored.Amount.StringFixed(2))
		assert.Equal(t, entities.FineStatusUnpaid, stored.Status)
	})

	t.Run("rejects returning the same loan twice", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		student := createTestStudent(t, db, "alice")
		book := createTestBook(t, db, "Dune", 1)

		loan := &entities.IssuedBook{StudentID: student.ID, BookID: book.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 15)}
		require.NoError(t, repo.IssueBook(loan))

		_, _, err := repo.ReturnBook(loan.ID, day(2026, 3, 10), noFine)
		require.NoError(t, err)

		_, _, err = repo.ReturnBook(loan.ID, day(2026, 3, 11), noFine)
		assert.ErrorIs(t, err, ErrAlreadyReturned)
	})

	t.Run("unknown loan", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		_, _, err := repo.ReturnBook(9999, day(2026, 3, 10), noFine)
		assert.ErrorIs(t, err, ErrLoanNotFound)
	})

	t.Run("still closes the loan after total copies shrank below the open loans", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		books := booksdb.NewRepository(db.DB)
		student := createTestStudent(t, db, "alice")
		book := createTestBook(t, db, "Dune", 3)

		loan := &entities.IssuedBook{StudentID: student.ID, BookID: book.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 15)}
		require.NoError(t, repo.IssueBook(loan))

		book.TotalCopies = 1
		require.NoError(t, books.UpdateBook(book))

		returned, _, err := repo.ReturnBook(loan.ID, day(2026, 3, 10), noFine)
		require.NoError(t, err)
		assert.Equal(t, entities.LoanStatusReturned, returned.Status)

		// availability stays clamped at the new total
		updated, err := books.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.AvailableCopies)
	})
}

func TestRepository_RefreshOverdue(t *testing.T) {
	db, cleanup := setupCirculationTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	student := createTestStudent(t, db, "alice")
	late := createTestBook(t, db, "Late Book", 1)
	onTime := createTestBook(t, db, "On Time Book", 1)

	lateLoan := &entities.IssuedBook{StudentID: student.ID, BookID: late.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 5)}
	require.NoError(t, repo.IssueBook(lateLoan))
	okLoan := &entities.IssuedBook{StudentID: student.ID, BookID: onTime.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 30)}
	require.NoError(t, repo.IssueBook(okLoan))

	flipped, err := repo.RefreshOverdue(day(2026, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), flipped)

	reloaded, err := repo.GetLoanByID(lateLoan.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.LoanStatusOverdue, reloaded.Status)

	reloaded, err = repo.GetLoanByID(okLoan.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.LoanStatusIssued, reloaded.Status)

	// Second run is a no-op
	flipped, err = repo.RefreshOverdue(day(2026, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(0), flipped)
}

func TestRepository_SettleFine(t *testing.T) {
	setupFine := func(t *testing.T, db *database.Database, repo *Repository) *entities.Fine {
		student := createTestStudent(t, db, "alice")
		book := createTestBook(t, db, "Dune", 1)
		loan := &entities.IssuedBook{StudentID: student.ID, BookID: book.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 15)}
		require.NoError(t, repo.IssueBook(loan))

		_, fine, err := repo.ReturnBook(loan.ID, day(2026, 3, 18), func(l *entities.IssuedBook) *entities.Fine {
			return &entities.Fine{
				IssuedBookID: l.ID,
				StudentID:    l.StudentID,
				Amount:       decimal.NewFromFloat(6.00),
				OverdueDays:  3,
				FinePerDay:   decimal.NewFromFloat(2.00),
				Status:       entities.FineStatusUnpaid,
			}
		})
		require.NoError(t, err)
		require.NotNil(t, fine)
		return fine
	}

	t.Run("marks an unpaid fine as paid", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		fine := setupFine(t, db, repo)
		admin := &entities.User{Username: "admin", Email: "admin@example.com", Role: entities.UserRoleAdmin}
		require.NoError(t, usersdb.NewRepository(db.DB).CreateUser(admin))

		settled, err := repo.SettleFine(fine.ID, entities.FineStatusPaid, admin.ID, day(2026, 3, 20))
		require.NoError(t, err)
		assert.Equal(t, entities.FineStatusPaid, settled.Status)
		require.NotNil(t, settled.SettledByID)
		assert.Equal(t, admin.ID, *settled.SettledByID)
		assert.Equal(t, "6.00", settled.Amount.StringFixed(2))
	})

	t.Run("settling twice is rejected and the amount never changes", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		fine := setupFine(t, db, repo)
		admin := &entities.User{Username: "admin", Email: "admin@example.com", Role: entities.UserRoleAdmin}
		require.NoError(t, usersdb.NewRepository(db.DB).CreateUser(admin))

		_, err := repo.SettleFine(fine.ID, entities.FineStatusPaid, admin.ID, day(2026, 3, 20))
		require.NoError(t, err)

		_, err = repo.SettleFine(fine.ID, entities.FineStatusPaid, admin.ID, day(2026, 3, 21))
		assert.ErrorIs(t, err, ErrFineSettled)

		_, err = repo.SettleFine(fine.ID, entities.FineStatusWaived, admin.ID, day(2026, 3, 21))
		assert.ErrorIs(t, err, ErrFineSettled)

		stored, err := repo.GetFineByID(fine.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.FineStatusPaid, stored.Status)
		assert.Equal(t, "6.00", stored.Amount.StringFixed(2))
	})

	t.Run("unknown fine", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		_, err := repo.SettleFine(4242, entities.FineStatusPaid, 1, day(2026, 3, 20))
		assert.ErrorIs(t, err, ErrFineNotFound)
	})
}

func TestRepository_ListLoans(t *testing.T) {
	db, cleanup := setupCirculationTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	student := createTestStudent(t, db, "alice")
	book := createTestBook(t, db, "Dune", 1)

	loan := &entities.IssuedBook{StudentID: student.ID, BookID: book.ID, IssueDate: day(2026, 3, 1), DueDate: day(2026, 3, 15)}
	require.NoError(t, repo.IssueBook(loan))

	t.Run("filters by status", func(t *testing.T) {
		loans, err := repo.ListLoans(entities.LoanStatusIssued, "")
		require.NoError(t, err)
		assert.Len(t, loans, 1)

		loans, err = repo.ListLoans(entities.LoanStatusReturned, "")
		require.NoError(t, err)
		assert.Empty(t, loans)
	})

	t.Run("searches by book title", func(t *testing.T) {
		loans, err := repo.ListLoans("", "dune")
		require.NoError(t, err)
		assert.Len(t, loans, 1)

		loans, err = repo.ListLoans("", "no-such-title")
		require.NoError(t, err)
		assert.Empty(t, loans)
	})
}
