package entities

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusReady     ReservationStatus = "ready"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusExpired   ReservationStatus = "expired"
)

// IsLive reports whether the reservation still waits on pickup.
func (s ReservationStatus) IsLive() bool {
	return s == ReservationStatusPending || s == ReservationStatusReady
}

type Reservation struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"index" json:"user_id"`
	User       User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BookID     uint              `gorm:"index" json:"book_id"`
	Book       Book              `gorm:"foreignKey:BookID" json:"book,omitempty"`
	ReservedOn time.Time         `gorm:"index" json:"reserved_on"`
	ExpiresOn  time.Time         `json:"expires_on"`
	Status     ReservationStatus `gorm:"index;size:20;default:'pending'" json:"status"`
	Notes      string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}
