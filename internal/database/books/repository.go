// Package books provides database operations for the catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(42)
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrBookHasActiveLoans = errors.New("book has active loans")
	ErrDuplicateISBN      = errors.New("a book with this ISBN already exists")
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a book and assigns its library code ("LIB-0042").
// The code is derived from the row ID, so both happen in one transaction.
func (r *Repository) CreateBook(book *entities.Book) error {
	if book.AvailableCopies == 0 && book.TotalCopies > 0 {
		book.AvailableCopies = book.TotalCopies
	}

	var existing entities.Book
	err := r.db.Where("isbn = ?", book.ISBN).First(&existing).Error
	if err == nil {
		return ErrDuplicateISBN
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(book).Error; err != nil {
			return err
		}
		book.Code = fmt.Sprintf("LIB-%04d", book.ID)
		return tx.Model(book).Update("code", book.Code).Error
	})
}

// UpdateBook saves catalog fields. Availability counters are owned by the
// circulation repository and are not written here; a shrink of total copies
// clamps availability so the counter invariant holds.
func (r *Repository) UpdateBook(book *entities.Book) error {
	updates := map[string]any{
		"title":        book.Title,
		"author":       book.Author,
		"isbn":         book.ISBN,
		"category_id":  book.CategoryID,
		"publisher_id": book.PublisherID,
		"rack_number":  book.RackNumber,
		"description":  book.Description,
		"total_copies": book.TotalCopies,
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Book{}).Where("id = ?", book.ID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookNotFound
		}
		return tx.Model(&entities.Book{}).
			Where("id = ? AND available_copies > total_copies", book.ID).
			Update("available_copies", gorm.Expr("total_copies")).Error
	})
}

// DeleteBook removes a book unless copies of it are still on loan.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&entities.IssuedBook{}).
			Where("book_id = ? AND status IN ?", id, []entities.LoanStatus{entities.LoanStatusIssued, entities.LoanStatusOverdue}).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrBookHasActiveLoans
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookNotFound
		}
		return nil
	})
}

// GetBookByID retrieves a book with its category and publisher.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Category").Preload("Publisher").First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns books matching an optional search term and category.
func (r *Repository) ListBooks(search string, categoryID uint) ([]entities.Book, error) {
	var books []entities.Book
	query := r.db.Preload("Category").Preload("Publisher").Order("title ASC")
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR isbn LIKE ? OR code LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.Find(&books).Error
	return books, err
}

// ListAvailableBooks returns books with at least one available copy.
func (r *Repository) ListAvailableBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("available_copies > 0").Order("title ASC").Find(&books).Error
	return books, err
}

func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *Repository) CreateCategory(category *entities.Category) error {
	return r.db.Create(category).Error
}

// ListPublishers returns all publishers ordered by name.
func (r *Repository) ListPublishers() ([]entities.Publisher, error) {
	var publishers []entities.Publisher
	err := r.db.Order("name ASC").Find(&publishers).Error
	return publishers, err
}

func (r *Repository) CreatePublisher(publisher *entities.Publisher) error {
	return r.db.Create(publisher).Error
}
