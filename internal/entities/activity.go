package entities

import "time"

type ActivityAction string

const (
	ActivityBookAdded      ActivityAction = "book_added"
	ActivityBookEdited     ActivityAction = "book_edited"
	ActivityBookDeleted    ActivityAction = "book_deleted"
	ActivityBookIssued     ActivityAction = "book_issued"
	ActivityBookReturned   ActivityAction = "book_returned"
	ActivityFinePaid       ActivityAction = "fine_paid"
	ActivityFineWaived     ActivityAction = "fine_waived"
	ActivityUserAdded      ActivityAction = "user_added"
	ActivityUserEdited     ActivityAction = "user_edited"
	ActivityUserDeleted    ActivityAction = "user_deleted"
	ActivityUserLogin      ActivityAction = "user_login"
	ActivityUserLogout     ActivityAction = "user_logout"
	ActivityReservationSet ActivityAction = "reservation_placed"
	ActivitySettingsEdited ActivityAction = "settings_edited"
)

// ActivityEntry is an append-only audit record. Entries are written
// fire-and-forget by mutating handlers and are never read back by them.
type ActivityEntry struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      *uint          `gorm:"index" json:"user_id,omitempty"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action      ActivityAction `gorm:"index;size:50" json:"action"`
	Description string         `gorm:"type:text" json:"description"`
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (ActivityEntry) TableName() string {
	return "activity_log"
}
