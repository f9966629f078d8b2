// Package reservations provides database operations for book holds.
//
// Reservations never touch the availability counters; the only coupling to
// the catalog is the zero-availability precondition checked on create.
package reservations

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrBookStillAvailable  = errors.New("book has available copies, no reservation needed")
	ErrAlreadyReserved     = errors.New("an active reservation for this book already exists")
	ErrReservationClosed   = errors.New("reservation is no longer active")
)

var liveStatuses = []entities.ReservationStatus{entities.ReservationStatusPending, entities.ReservationStatusReady}

// Repository handles all reservation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateReservation places a hold on a book that has no available copies.
func (r *Repository) CreateReservation(reservation *entities.Reservation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, reservation.BookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return err
		}
		if book.AvailableCopies > 0 {
			return ErrBookStillAvailable
		}

		var live int64
		err := tx.Model(&entities.Reservation{}).
			Where("user_id = ? AND book_id = ? AND status IN ?", reservation.UserID, reservation.BookID, liveStatuses).
			Count(&live).Error
		if err != nil {
			return err
		}
		if live > 0 {
			return ErrAlreadyReserved
		}

		reservation.Status = entities.ReservationStatusPending
		return tx.Create(reservation).Error
	})
}

// GetReservationByID retrieves a reservation with its user and book.
func (r *Repository) GetReservationByID(id uint) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := r.db.Preload("User").Preload("Book").First(&reservation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// RefreshExpired flips live reservations past their expiry to expired.
// Like the overdue refresh, this is a cache of a derived value, run before
// list queries.
func (r *Repository) RefreshExpired(now time.Time) (int64, error) {
	result := r.db.Model(&entities.Reservation{}).
		Where("status IN ? AND expires_on < ?", liveStatuses, now).
		Update("status", entities.ReservationStatusExpired)
	return result.RowsAffected, result.Error
}

// ListReservations returns reservations, optionally filtered by status.
func (r *Repository) ListReservations(status entities.ReservationStatus) ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	query := r.db.Preload("User").Preload("Book").Order("reserved_on DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&reservations).Error
	return reservations, err
}

// ListReservationsForUser returns one user's reservations, newest first.
func (r *Repository) ListReservationsForUser(userID uint) ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("reserved_on DESC, id DESC").
		Find(&reservations).Error
	return reservations, err
}

// Transition moves a live reservation to the given status. expiresOn, when
// non-nil, replaces the pickup deadline (used by mark-ready).
func (r *Repository) Transition(id uint, status entities.ReservationStatus, expiresOn *time.Time) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": status}
		if expiresOn != nil {
			updates["expires_on"] = *expiresOn
		}
		result := tx.Model(&entities.Reservation{}).
			Where("id = ? AND status IN ?", id, liveStatuses).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.First(&reservation, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrReservationNotFound
				}
				return err
			}
			return ErrReservationClosed
		}
		return tx.Preload("User").Preload("Book").First(&reservation, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}
