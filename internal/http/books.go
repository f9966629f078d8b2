package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/auth"
	booksdb "github.com/openshelf/openshelf/internal/database/books"
	reviewsdb "github.com/openshelf/openshelf/internal/database/reviews"
	"github.com/openshelf/openshelf/internal/entities"
)

type BooksController struct {
	books       *booksdb.Repository
	reviews     *reviewsdb.Repository
	activityLog *activity.Service
}

func NewBooksController(books *booksdb.Repository, reviews *reviewsdb.Repository, activityLog *activity.Service) *BooksController {
	return &BooksController{
		books:       books,
		reviews:     reviews,
		activityLog: activityLog,
	}
}

type bookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	ISBN        string `json:"isbn" binding:"required"`
	CategoryID  *uint  `json:"category_id"`
	PublisherID *uint  `json:"publisher_id"`
	TotalCopies int    `json:"total_copies"`
	RackNumber  string `json:"rack_number"`
	Description string `json:"description"`
}

func (controller *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title, author and isbn are required")
		return
	}
	if req.TotalCopies < 1 {
		req.TotalCopies = 1
	}

	book := entities.Book{
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		ISBN:            strings.TrimSpace(req.ISBN),
		CategoryID:      req.CategoryID,
		PublisherID:     req.PublisherID,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
		RackNumber:      req.RackNumber,
		Description:     req.Description,
	}

	if err := controller.books.CreateBook(&book); err != nil {
		if errors.Is(err, booksdb.ErrDuplicateISBN) {
			respondConflict(c, err.Error())
			return
		}
		respondInternalError(c, err, "create book")
		return
	}

	controller.activityLog.Record(auth.GetUser(c), entities.ActivityBookAdded,
		"Added book "+book.Code+" ("+book.Title+")", c.ClientIP())
	respondCreated(c, book)
}

func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title, author and isbn are required")
		return
	}
	if req.TotalCopies < 1 {
		req.TotalCopies = 1
	}

	book := entities.Book{
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		ISBN:        strings.TrimSpace(req.ISBN),
		CategoryID:  req.CategoryID,
		PublisherID: req.PublisherID,
		TotalCopies: req.TotalCopies,
		RackNumber:  req.RackNumber,
		Description: req.Description,
	}
	book.ID = id

	if err := controller.books.UpdateBook(&book); err != nil {
		if errors.Is(err, booksdb.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}

	updated, err := controller.books.GetBookByID(id)
	if err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	controller.activityLog.Record(auth.GetUser(c), entities.ActivityBookEdited,
		"Edited book "+updated.Code+" ("+updated.Title+")", c.ClientIP())
	c.IndentedJSON(http.StatusOK, updated)
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.books.GetBookByID(id)
	if err != nil {
		if errors.Is(err, booksdb.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	if err := controller.books.DeleteBook(id); err != nil {
		switch {
		case errors.Is(err, booksdb.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, booksdb.ErrBookHasActiveLoans):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "delete book")
		}
		return
	}

	controller.activityLog.Record(auth.GetUser(c), entities.ActivityBookDeleted,
		"Deleted book "+book.Code+" ("+book.Title+")", c.ClientIP())
	respondSuccess(c, "book deleted")
}

func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.books.GetBookByID(id)
	if err != nil {
		if errors.Is(err, booksdb.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	avg, err := controller.reviews.AverageRatingForBook(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"book":           book,
		"average_rating": avg,
	})
}

func (controller *BooksController) ListBooks(c *gin.Context) {
	categoryID, ok := parseQueryUint(c, "category_id")
	if !ok {
		return
	}

	books, err := controller.books.ListBooks(c.Query("search"), categoryID)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) ListAvailableBooks(c *gin.Context) {
	books, err := controller.books.ListAvailableBooks()
	if err != nil {
		respondInternalError(c, err, "list available books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) ListCategories(c *gin.Context) {
	categories, err := controller.books.ListCategories()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"categories": categories})
}

func (controller *BooksController) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	category := entities.Category{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := controller.books.CreateCategory(&category); err != nil {
		respondInternalError(c, err, "create category")
		return
	}
	respondCreated(c, category)
}

func (controller *BooksController) ListPublishers(c *gin.Context) {
	publishers, err := controller.books.ListPublishers()
	if err != nil {
		respondInternalError(c, err, "list publishers")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"publishers": publishers})
}

func (controller *BooksController) CreatePublisher(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	publisher := entities.Publisher{Name: strings.TrimSpace(req.Name), Address: req.Address}
	if err := controller.books.CreatePublisher(&publisher); err != nil {
		respondInternalError(c, err, "create publisher")
		return
	}
	respondCreated(c, publisher)
}
