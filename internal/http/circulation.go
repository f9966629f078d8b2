package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/circulation"
	circulationdb "github.com/openshelf/openshelf/internal/database/circulation"
	usersdb "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

type CirculationController struct {
	service *circulation.Service
}

func NewCirculationController(service *circulation.Service) *CirculationController {
	return &CirculationController{service: service}
}

type issueRequest struct {
	StudentID uint   `json:"student_id" binding:"required"`
	BookID    uint   `json:"book_id" binding:"required"`
	DueDate   string `json:"due_date"` // YYYY-MM-DD, optional
	Notes     string `json:"notes"`
}

func (controller *CirculationController) IssueBook(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "student_id and book_id are required")
		return
	}

	input := circulation.IssueInput{
		StudentID: req.StudentID,
		BookID:    req.BookID,
		Notes:     req.Notes,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			respondBadRequest(c, "due_date must be formatted as YYYY-MM-DD")
			return
		}
		input.DueDate = &due
	}

	loan, err := controller.service.Issue(auth.GetUser(c), input, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, usersdb.ErrUserNotFound):
			respondNotFound(c, "student")
		case errors.Is(err, circulationdb.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, circulation.ErrNotAStudent), errors.Is(err, circulation.ErrInvalidDue):
			respondBadRequest(c, err.Error())
		case errors.Is(err, circulationdb.ErrAlreadyIssued):
			respondConflict(c, err.Error())
		case errors.Is(err, circulationdb.ErrNoCopiesAvailable):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "issue book")
		}
		return
	}

	respondCreated(c, loan)
}

func (controller *CirculationController) ReturnBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, fine, err := controller.service.Return(auth.GetUser(c), id, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, circulationdb.ErrLoanNotFound):
			respondNotFound(c, "issued book")
		case errors.Is(err, circulationdb.ErrAlreadyReturned):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "return book")
		}
		return
	}

	response := gin.H{"loan": loan}
	if fine != nil {
		response["fine"] = fine
	}
	c.IndentedJSON(http.StatusOK, response)
}

func (controller *CirculationController) ListLoans(c *gin.Context) {
	status := entities.LoanStatus(c.Query("status"))
	loans, err := controller.service.ListIssued(status, c.Query("search"))
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

func (controller *CirculationController) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, fine, err := controller.service.LoanDetail(id)
	if err != nil {
		if errors.Is(err, circulationdb.ErrLoanNotFound) {
			respondNotFound(c, "issued book")
			return
		}
		respondInternalError(c, err, "get loan")
		return
	}

	response := gin.H{"loan": loan}
	if fine != nil {
		response["fine"] = fine
	}
	c.IndentedJSON(http.StatusOK, response)
}

// MyBooks lists the calling student's own loans and unpaid fines.
func (controller *CirculationController) MyBooks(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	loans, fines, err := controller.service.MyBooks(userID)
	if err != nil {
		respondInternalError(c, err, "my books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"loans": loans, "unpaid_fines": fines})
}
