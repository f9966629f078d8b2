package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/auth"
	reservationsdb "github.com/openshelf/openshelf/internal/database/reservations"
	"github.com/openshelf/openshelf/internal/entities"
)

// Hold windows: a pending reservation waits up to a week for a copy,
// a ready reservation waits three days for pickup.
const (
	reservationHoldDays   = 7
	reservationPickupDays = 3
)

type ReservationsController struct {
	reservations *reservationsdb.Repository
	activityLog  *activity.Service
}

func NewReservationsController(reservations *reservationsdb.Repository, activityLog *activity.Service) *ReservationsController {
	return &ReservationsController{
		reservations: reservations,
		activityLog:  activityLog,
	}
}

func (controller *ReservationsController) PlaceReservation(c *gin.Context) {
	var req struct {
		BookID uint   `json:"book_id" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	user := auth.GetUser(c)
	now := time.Now()
	reservation := entities.Reservation{
		UserID:     user.ID,
		BookID:     req.BookID,
		ReservedOn: now,
		ExpiresOn:  now.AddDate(0, 0, reservationHoldDays),
		Status:     entities.ReservationStatusPending,
		Notes:      req.Notes,
	}

	if err := controller.reservations.CreateReservation(&reservation); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, reservationsdb.ErrBookStillAvailable),
			errors.Is(err, reservationsdb.ErrAlreadyReserved):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "place reservation")
		}
		return
	}

	controller.activityLog.Record(user, entities.ActivityReservationSet,
		fmt.Sprintf("Placed reservation %d for book %d", reservation.ID, reservation.BookID), c.ClientIP())
	respondCreated(c, reservation)
}

func (controller *ReservationsController) ListReservations(c *gin.Context) {
	if _, err := controller.reservations.RefreshExpired(time.Now()); err != nil {
		respondInternalError(c, err, "list reservations")
		return
	}

	status := entities.ReservationStatus(c.Query("status"))
	reservations, err := controller.reservations.ListReservations(status)
	if err != nil {
		respondInternalError(c, err, "list reservations")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"reservations": reservations, "count": len(reservations)})
}

// MyReservations lists the calling user's own reservations.
func (controller *ReservationsController) MyReservations(c *gin.Context) {
	if _, err := controller.reservations.RefreshExpired(time.Now()); err != nil {
		respondInternalError(c, err, "my reservations")
		return
	}

	reservations, err := controller.reservations.ListReservationsForUser(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "my reservations")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"reservations": reservations, "count": len(reservations)})
}

// MarkReady moves a pending reservation to ready once a copy comes back,
// restarting the clock with the pickup window.
func (controller *ReservationsController) MarkReady(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	pickupDeadline := time.Now().AddDate(0, 0, reservationPickupDays)
	reservation, err := controller.reservations.Transition(id, entities.ReservationStatusReady, &pickupDeadline)
	if err != nil {
		controller.respondTransitionError(c, err, "mark reservation ready")
		return
	}
	c.IndentedJSON(http.StatusOK, reservation)
}

func (controller *ReservationsController) Fulfill(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := controller.reservations.Transition(id, entities.ReservationStatusFulfilled, nil)
	if err != nil {
		controller.respondTransitionError(c, err, "fulfill reservation")
		return
	}
	c.IndentedJSON(http.StatusOK, reservation)
}

func (controller *ReservationsController) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Students may only cancel their own reservations.
	user := auth.GetUser(c)
	if user != nil && !user.Role.IsStaff() {
		existing, err := controller.reservations.GetReservationByID(id)
		if err != nil {
			if errors.Is(err, reservationsdb.ErrReservationNotFound) {
				respondNotFound(c, "reservation")
				return
			}
			respondInternalError(c, err, "cancel reservation")
			return
		}
		if existing.UserID != user.ID {
			respondError(c, http.StatusForbidden, "insufficient permissions")
			return
		}
	}

	reservation, err := controller.reservations.Transition(id, entities.ReservationStatusCancelled, nil)
	if err != nil {
		controller.respondTransitionError(c, err, "cancel reservation")
		return
	}
	c.IndentedJSON(http.StatusOK, reservation)
}

func (controller *ReservationsController) respondTransitionError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, reservationsdb.ErrReservationNotFound):
		respondNotFound(c, "reservation")
	case errors.Is(err, reservationsdb.ErrReservationClosed):
		respondConflict(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}
