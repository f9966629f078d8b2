package entities

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Publisher struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200" json:"name"`
	Address   string    `gorm:"type:text" json:"address,omitempty"`
	Website   string    `gorm:"size:512" json:"website,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Book struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Code            string     `gorm:"uniqueIndex;size:20" json:"code"` // e.g. "LIB-0042"
	Title           string     `gorm:"index;size:300" json:"title"`
	Author          string     `gorm:"index;size:200" json:"author"`
	ISBN            string     `gorm:"uniqueIndex;size:20" json:"isbn"`
	CategoryID      *uint      `gorm:"index" json:"category_id,omitempty"`
	Category        *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PublisherID     *uint      `gorm:"index" json:"publisher_id,omitempty"`
	Publisher       *Publisher `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	TotalCopies     int        `gorm:"default:1" json:"total_copies"`
	AvailableCopies int        `gorm:"default:1" json:"available_copies"`
	RackNumber      string     `gorm:"size:20" json:"rack_number,omitempty"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

func (Category) TableName() string {
	return "categories"
}

func (Publisher) TableName() string {
	return "publishers"
}

func (Book) TableName() string {
	return "books"
}
