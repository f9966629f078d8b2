package circulation

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/database"
	activitydb "github.com/openshelf/openshelf/internal/database/activity"
	booksdb "github.com/openshelf/openshelf/internal/database/books"
	circulationdb "github.com/openshelf/openshelf/internal/database/circulation"
	settingsdb "github.com/openshelf/openshelf/internal/database/settings"
	usersdb "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

type serviceFixture struct {
	db      *database.Database
	service *Service
	users   *usersdb.Repository
	books   *booksdb.Repository
	loans   *circulationdb.Repository
	entries *activitydb.Repository
}

func setupService(t *testing.T, today time.Time) (*serviceFixture, func()) {
	t.Helper()

	dbPath := "./test_service_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	loans := circulationdb.NewRepository(db.DB)
	users := usersdb.NewRepository(db.DB)
	settings := settingsdb.NewRepository(db.DB)
	entries := activitydb.NewRepository(db.DB)

	service := NewService(loans, users, settings, activity.NewService(entries))
	service.SetClock(func() time.Time { return today })

	fixture := &serviceFixture{
		db:      db,
		service: service,
		users:   users,
		books:   booksdb.NewRepository(db.DB),
		loans:   loans,
		entries: entries,
	}
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return fixture, cleanup
}

func (f *serviceFixture) student(t *testing.T, username string) *entities.User {
	t.Helper()
	user := &entities.User{Username: username, Email: username + "@example.com", Role: entities.UserRoleStudent}
	require.NoError(t, f.users.CreateUser(user))
	return user
}

func (f *serviceFixture) librarian(t *testing.T) *entities.User {
	t.Helper()
	user := &entities.User{Username: "librarian", Email: "librarian@example.com", Role: entities.UserRoleLibrarian}
	require.NoError(t, f.users.CreateUser(user))
	return user
}

func (f *serviceFixture) book(t *testing.T, title string, copies int) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, Author: "Author", ISBN: "isbn-" + title, TotalCopies: copies, AvailableCopies: copies}
	require.NoError(t, f.books.CreateBook(book))
	return book
}

func TestService_Issue(t *testing.T) {
	today := date(2026, 3, 1)

	t.Run("defaults the due date to the configured loan period", func(t *testing.T) {
		f, cleanup := setupService(t, today)
		defer cleanup()

		actor := f.librarian(t)
		student := f.student(t, "alice")
		book := f.book(t, "Dune", 1)

		loan, err := f.service.Issue(actor, IssueInput{StudentID: student.ID, BookID: book.ID}, "127.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, date(2026, 3, 15), loan.DueDate)
		assert.Equal(t, today, loan.IssueDate)
		require.NotNil(t, loan.IssuedByID)
		assert.Equal(t, actor.ID, *loan.IssuedByID)
	})

	t.Run("accepts an explicit future due date", func(t *testing.T) {
		f, cleanup := setupService(t, today)
		defer cleanup()

		actor := f.librarian(t)
		student := f.student(t, "alice")
		book := f.book(t, "Dune", 1)

		due := date(2026, 3, 8)
		loan, err := f.service.Issue(actor, IssueInput{StudentID: student.ID, BookID: book.ID, DueDate: &due}, "127.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, due, loan.DueDate)
	})

	t.Run("rejects a due date in the past", func(t *testing.T) {
		f, cleanup := setupService(t, today)
		defer cleanup()

		actor := f.librarian(t)
		student := f.student(t, "alice")
		book := f.book(t, "Dune", 1)

		due := date(2026, 2, 20)
		_, err := f.service.Issue(actor, IssueInput{StudentID: student.ID, BookID: book.ID, DueDate: &due}, "127.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidDue)
	})

	t.Run("only students can borrow", func(t *testing.T) {
		f, cleanup := setupService(t, today)
		defer cleanup()

		actor := f.librarian(t)
		book := f.book(t, "Dune", 1)

		_, err := f.service.Issue(actor, IssueInput{StudentID: actor.ID, BookID: book.ID}, "127.0.0.1")
		assert.ErrorIs(t, err, ErrNotAStudent)
	})
}

func TestService_Return(t *testing.T) {
	t.Run("on-time return creates no fine", func(t *testing.T) {
		f, cleanup := setupService(t, date(2026, 3, 1))
		defer cleanup()

		actor := f.librarian(t)
		student := f.student(t, "alice")
		book := f.book(t, "Dune", 1)

		loan, err := f.service.Issue(actor, IssueInput{StudentID: student.ID, BookID: book.ID}, "127.0.0.1")
		require.NoError(t, err)

		f.service.SetClock(func() time.Time { return date(2026, 3, 10) })
		returned, fine, err := f.service.Return(actor, loan.ID, "127.0.0.1")
		require.NoError(t, err)
		assert.Nil(t, fine)
		assert.Equal(t, entities.LoanStatusReturned, returned.Status)
	})

	t.Run("three days late at the default rate owes 6.00", func(t *testing.T) {
		f, cleanup := setupService(t, date(2026, 3, 1))
		defer cleanup()

		actor := f.librarian(t)
		student := f.student(t, "alice")
		book := f.book(t, "Dune", 1)

		loan, err := f.service.Issue(actor, IssueInput{StudentID: student.ID, BookID: book.ID}, "127.0.0.1")
		require.NoError(t, err)

		// Due 2026-03-15, returned 2026-03-18
		f.service.SetClock(func() time.Time { return date(2026, 3, 18) })
		_, fine, err := f.service.Return(actor, loan.ID, "127.0.0.1")
		require.NoError(t, err)
		require.NotNil(t, fine)
		assert.Equal(t, "6.00", fine.Amount.StringFixed(2))
		assert.Equal(t, 3, fine.OverdueDays)
		assert.Equal(t, entities.FineStatusUnpaid, fine.Status)
	})
}

func TestService_ListIssued(t *testing.T) {
	t.Run("refreshes overdue flags before listing", func(t *testing.T) {
		f, cleanup := setupService(t, date(2026, 3, 1))
		defer cleanup()

		actor := f.librarian(t)
		student := f.student(t, "alice")
		book := f.book(t, "Dune", 1)

		_, err := f.service.Issue(actor, IssueInput{StudentID: student.ID, BookID: book.ID}, "127.0.0.1")
		require.NoError(t, err)

		f.service.SetClock(func() time.Time { return date(2026, 4, 1) })
		loans, err := f.service.ListIssued(entities.LoanStatusOverdue, "")
		require.NoError(t, err)
		require.Len(t, loans, 1)
		assert.Equal(t, entities.LoanStatusOverdue, loans[0].Status)
	})
}

func TestService_Fines(t *testing.T) {
	makeFine := func(t *testing.T, f *serviceFixture, actor *entities.User) *entities.Fine {
		t.Helper()
		student := f.student(t, "alice")
		book := f.book(t, "Dune", 1)

		loan, err := f.service.Issue(actor, IssueInput{StudentID: student.ID, BookID: book.ID}, "127.0.0.1")
		require.NoError(t, err)

		f.service.SetClock(func() time.Time { return date(2026, 3, 18) })
		_, fine, err := f.service.Return(actor, loan.ID, "127.0.0.1")
		require.NoError(t, err)
		require.NotNil(t, fine)
		return fine
	}

	t.Run("mark paid settles once and records the settler", func(t *testing.T) {
		f, cleanup := setupService(t, date(2026, 3, 1))
		defer cleanup()

		actor := f.librarian(t)
		fine := makeFine(t, f, actor)

		paid, err := f.service.MarkFinePaid(actor, fine.ID, "127.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, entities.FineStatusPaid, paid.Status)
		require.NotNil(t, paid.SettledByID)
		assert.Equal(t, actor.ID, *paid.SettledByID)

		_, err = f.service.MarkFinePaid(actor, fine.ID, "127.0.0.1")
		assert.ErrorIs(t, err, circulationdb.ErrFineSettled)
	})

	t.Run("waive settles without payment", func(t *testing.T) {
		f, cleanup := setupService(t, date(2026, 3, 1))
		defer cleanup()

		actor := f.librarian(t)
		fine := makeFine(t, f, actor)

		waived, err := f.service.WaiveFine(actor, fine.ID, "127.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, entities.FineStatusWaived, waived.Status)

		_, err = f.service.MarkFinePaid(actor, fine.ID, "127.0.0.1")
		assert.ErrorIs(t, err, circulationdb.ErrFineSettled)
	})
}

func TestService_MyBooks(t *testing.T) {
	f, cleanup := setupService(t, date(2026, 3, 1))
	defer cleanup()

	actor := f.librarian(t)
	student := f.student(t, "alice")
	book := f.book(t, "Dune", 1)

	loan, err := f.service.Issue(actor, IssueInput{StudentID: student.ID, BookID: book.ID}, "127.0.0.1")
	require.NoError(t, err)

	f.service.SetClock(func() time.Time { return date(2026, 3, 18) })
	_, _, err = f.service.Return(actor, loan.ID, "127.0.0.1")
	require.NoError(t, err)

	loans, fines, err := f.service.MyBooks(student.ID)
	require.NoError(t, err)
	assert.Len(t, loans, 1)
	require.Len(t, fines, 1)
	assert.Equal(t, "6.00", fines[0].Amount.StringFixed(2))
}
