package reviews

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
	booksdb "github.com/openshelf/openshelf/internal/database/books"
	usersdb "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupReviewsTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()

	dbPath := "./test_reviews_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func reviewFixtures(t *testing.T, db *database.Database) (*entities.User, *entities.Book) {
	t.Helper()

	user := &entities.User{Username: "alice", Email: "alice@example.com", Role: entities.UserRoleStudent}
	require.NoError(t, usersdb.NewRepository(db.DB).CreateUser(user))

	book := &entities.Book{Title: "Dune", Author: "Herbert", ISBN: "isbn-dune", TotalCopies: 1, AvailableCopies: 1}
	require.NoError(t, booksdb.NewRepository(db.DB).CreateBook(book))
	return user, book
}

func TestRepository_CreateReview(t *testing.T) {
	t.Run("stores a valid review", func(t *testing.T) {
		db, cleanup := setupReviewsTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		user, book := reviewFixtures(t, db)

		review := &entities.Review{UserID: user.ID, BookID: book.ID, Rating: 4, Comment: "Good read"}
		require.NoError(t, repo.CreateReview(review))
		assert.NotZero(t, review.ID)
	})

	t.Run("rejects ratings outside 1..5", func(t *testing.T) {
		db, cleanup := setupReviewsTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		user, book := reviewFixtures(t, db)

		assert.ErrorIs(t, repo.CreateReview(&entities.Review{UserID: user.ID, BookID: book.ID, Rating: 0}), ErrInvalidRating)
		assert.ErrorIs(t, repo.CreateReview(&entities.Review{UserID: user.ID, BookID: book.ID, Rating: 6}), ErrInvalidRating)
	})

	t.Run("one review per user per book", func(t *testing.T) {
		db, cleanup := setupReviewsTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		user, book := reviewFixtures(t, db)

		require.NoError(t, repo.CreateReview(&entities.Review{UserID: user.ID, BookID: book.ID, Rating: 4}))
		err := repo.CreateReview(&entities.Review{UserID: user.ID, BookID: book.ID, Rating: 2})
		assert.ErrorIs(t, err, ErrDuplicate)
	})
}

func TestRepository_UpdateReview(t *testing.T) {
	db, cleanup := setupReviewsTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	user, book := reviewFixtures(t, db)

	review := &entities.Review{UserID: user.ID, BookID: book.ID, Rating: 4, Comment: "Good"}
	require.NoError(t, repo.CreateReview(review))

	updated, err := repo.UpdateReview(review.ID, 5, "Great on reread")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Great on reread", updated.Comment)

	_, err = repo.UpdateReview(review.ID, 9, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = repo.UpdateReview(999, 3, "")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestRepository_AverageRatingForBook(t *testing.T) {
	db, cleanup := setupReviewsTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	user, book := reviewFixtures(t, db)

	t.Run("zero without reviews", func(t *testing.T) {
		avg, err := repo.AverageRatingForBook(book.ID)
		require.NoError(t, err)
		assert.Zero(t, avg)
	})

	t.Run("averages across reviewers", func(t *testing.T) {
		other := &entities.User{Username: "bob", Email: "bob@example.com", Role: entities.UserRoleStudent}
		require.NoError(t, usersdb.NewRepository(db.DB).CreateUser(other))

		require.NoError(t, repo.CreateReview(&entities.Review{UserID: user.ID, BookID: book.ID, Rating: 5}))
		require.NoError(t, repo.CreateReview(&entities.Review{UserID: other.ID, BookID: book.ID, Rating: 2}))

		avg, err := repo.AverageRatingForBook(book.ID)
		require.NoError(t, err)
		assert.InDelta(t, 3.5, avg, 0.001)
	})
}

func TestRepository_DeleteReview(t *testing.T) {
	db, cleanup := setupReviewsTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	user, book := reviewFixtures(t, db)

	review := &entities.Review{UserID: user.ID, BookID: book.ID, Rating: 3}
	require.NoError(t, repo.CreateReview(review))

	require.NoError(t, repo.DeleteReview(review.ID))
	assert.ErrorIs(t, repo.DeleteReview(review.ID), ErrReviewNotFound)
}
