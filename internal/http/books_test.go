package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/database"
	activitydb "github.com/openshelf/openshelf/internal/database/activity"
	booksdb "github.com/openshelf/openshelf/internal/database/books"
	reviewsdb "github.com/openshelf/openshelf/internal/database/reviews"
	"github.com/openshelf/openshelf/internal/entities"
)

func newBooksRouter(db *database.Database, user *entities.User) *gin.Engine {
	controller := NewBooksController(
		booksdb.NewRepository(db.DB),
		reviewsdb.NewRepository(db.DB),
		activity.NewService(activitydb.NewRepository(db.DB)),
	)

	router := gin.New()
	if user != nil {
		router.Use(asUser(user))
	}
	router.GET("/api/books", controller.ListBooks)
	router.GET("/api/books/:id", controller.GetBook)
	router.POST("/api/books", controller.CreateBook)
	router.PUT("/api/books/:id", controller.UpdateBook)
	router.DELETE("/api/books/:id", controller.DeleteBook)
	router.GET("/api/categories", controller.ListCategories)
	return router
}

func TestBooksController_CreateBook(t *testing.T) {
	t.Run("creates a book with an accession code", func(t *testing.T) {
		db, cleanup := setupTestDB(t, "books")
		defer cleanup()

		librarian := makeUser(t, db, "librarian", entities.UserRoleLibrarian)
		router := newBooksRouter(db, librarian)

		body := bytes.NewBufferString(`{"title": "Dune", "author": "Frank Herbert", "isbn": "978-0441172719", "total_copies": 3}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var book entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.NotEmpty(t, book.Code)
		assert.Equal(t, 3, book.AvailableCopies)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		db, cleanup := setupTestDB(t, "books")
		defer cleanup()

		router := newBooksRouter(db, makeUser(t, db, "librarian", entities.UserRoleLibrarian))

		body := bytes.NewBufferString(`{"title": "No Author"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate ISBN is a conflict", func(t *testing.T) {
		db, cleanup := setupTestDB(t, "books")
		defer cleanup()

		router := newBooksRouter(db, makeUser(t, db, "librarian", entities.UserRoleLibrarian))
		makeBook(t, db, "Dune", 1)

		body := bytes.NewBufferString(`{"title": "Dune Again", "author": "Frank Herbert", "isbn": "isbn-Dune"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBooksController_GetBook(t *testing.T) {
	db, cleanup := setupTestDB(t, "books")
	defer cleanup()

	router := newBooksRouter(db, nil)
	book := makeBook(t, db, "Dune", 1)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/"+itoa(book.ID), nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/9999", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_ListBooks(t *testing.T) {
	db, cleanup := setupTestDB(t, "books")
	defer cleanup()

	router := newBooksRouter(db, nil)
	makeBook(t, db, "Dune", 1)
	makeBook(t, db, "Foundation", 2)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/books?search=dune", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
}

func TestBooksController_ListCategories(t *testing.T) {
	db, cleanup := setupTestDB(t, "books")
	defer cleanup()

	router := newBooksRouter(db, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/categories", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Categories []entities.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Categories, "default categories are seeded at startup")
}
