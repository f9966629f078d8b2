package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	reviewsdb "github.com/openshelf/openshelf/internal/database/reviews"
	"github.com/openshelf/openshelf/internal/entities"
)

type ReviewsController struct {
	reviews *reviewsdb.Repository
}

func NewReviewsController(reviews *reviewsdb.Repository) *ReviewsController {
	return &ReviewsController{reviews: reviews}
}

func (controller *ReviewsController) CreateReview(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "rating is required")
		return
	}

	review := entities.Review{
		UserID:  auth.GetUserID(c),
		BookID:  bookID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := controller.reviews.CreateReview(&review); err != nil {
		switch {
		case errors.Is(err, reviewsdb.ErrInvalidRating):
			respondBadRequest(c, err.Error())
		case errors.Is(err, reviewsdb.ErrDuplicate):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "create review")
		}
		return
	}
	respondCreated(c, review)
}

func (controller *ReviewsController) UpdateReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	existing, err := controller.reviews.GetReviewByID(id)
	if err != nil {
		if errors.Is(err, reviewsdb.ErrReviewNotFound) {
			respondNotFound(c, "review")
			return
		}
		respondInternalError(c, err, "update review")
		return
	}

	// Only the author may edit their review.
	if existing.UserID != auth.GetUserID(c) {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "rating is required")
		return
	}

	review, err := controller.reviews.UpdateReview(id, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, reviewsdb.ErrInvalidRating):
			respondBadRequest(c, err.Error())
		case errors.Is(err, reviewsdb.ErrReviewNotFound):
			respondNotFound(c, "review")
		default:
			respondInternalError(c, err, "update review")
		}
		return
	}
	c.IndentedJSON(http.StatusOK, review)
}

func (controller *ReviewsController) DeleteReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	existing, err := controller.reviews.GetReviewByID(id)
	if err != nil {
		if errors.Is(err, reviewsdb.ErrReviewNotFound) {
			respondNotFound(c, "review")
			return
		}
		respondInternalError(c, err, "delete review")
		return
	}

	// Authors delete their own reviews, staff can moderate any.
	user := auth.GetUser(c)
	if user == nil || (existing.UserID != user.ID && !user.Role.IsStaff()) {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return
	}

	if err := controller.reviews.DeleteReview(id); err != nil {
		if errors.Is(err, reviewsdb.ErrReviewNotFound) {
			respondNotFound(c, "review")
			return
		}
		respondInternalError(c, err, "delete review")
		return
	}
	respondSuccess(c, "review deleted")
}

func (controller *ReviewsController) ListReviewsForBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := controller.reviews.ListReviewsForBook(bookID)
	if err != nil {
		respondInternalError(c, err, "list reviews")
		return
	}

	avg, err := controller.reviews.AverageRatingForBook(bookID)
	if err != nil {
		respondInternalError(c, err, "list reviews")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"count":          len(reviews),
		"average_rating": avg,
	})
}
