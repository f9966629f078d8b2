// Package activity provides the fire-and-forget audit trail used by every
// mutating operation. Recording never blocks or fails the caller.
package activity

import (
	"log"

	activitydb "github.com/openshelf/openshelf/internal/database/activity"
	"github.com/openshelf/openshelf/internal/entities"
)

// Service provides high-level activity logging.
type Service struct {
	repo *activitydb.Repository
}

// NewService creates a new activity service.
func NewService(repo *activitydb.Repository) *Service {
	return &Service{repo: repo}
}

// Record appends an entry in the background. Failures are logged and
// swallowed; the primary operation never rolls back because of them.
func (s *Service) Record(actor *entities.User, action entities.ActivityAction, description, ipAddress string) {
	entry := &entities.ActivityEntry{
		Action:      action,
		Description: description,
		IPAddress:   ipAddress,
	}
	if actor != nil {
		userID := actor.ID
		entry.UserID = &userID
	}
	go func() {
		if err := s.repo.Record(entry); err != nil {
			log.Printf("Failed to record activity entry: %v", err)
		}
	}()
}

// RecordSync appends an entry on the calling goroutine. Used by tests and
// by the archive export, which needs the write to have landed.
func (s *Service) RecordSync(actor *entities.User, action entities.ActivityAction, description, ipAddress string) error {
	entry := &entities.ActivityEntry{
		Action:      action,
		Description: description,
		IPAddress:   ipAddress,
	}
	if actor != nil {
		userID := actor.ID
		entry.UserID = &userID
	}
	return s.repo.Record(entry)
}
