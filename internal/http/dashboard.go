package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	booksdb "github.com/openshelf/openshelf/internal/database/books"
	circulationdb "github.com/openshelf/openshelf/internal/database/circulation"
	usersdb "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

type DashboardController struct {
	books       *booksdb.Repository
	users       *usersdb.Repository
	circulation *circulationdb.Repository
}

func NewDashboardController(books *booksdb.Repository, users *usersdb.Repository, circulation *circulationdb.Repository) *DashboardController {
	return &DashboardController{
		books:       books,
		users:       users,
		circulation: circulation,
	}
}

// Stats summarizes the library for the staff landing page.
func (controller *DashboardController) Stats(c *gin.Context) {
	totalBooks, err := controller.books.CountBooks()
	if err != nil {
		respondInternalError(c, err, "dashboard")
		return
	}
	totalStudents, err := controller.users.CountByRole(entities.UserRoleStudent)
	if err != nil {
		respondInternalError(c, err, "dashboard")
		return
	}
	issued, err := controller.circulation.CountLoansByStatus(entities.LoanStatusIssued, entities.LoanStatusOverdue)
	if err != nil {
		respondInternalError(c, err, "dashboard")
		return
	}
	overdue, err := controller.circulation.CountLoansByStatus(entities.LoanStatusOverdue)
	if err != nil {
		respondInternalError(c, err, "dashboard")
		return
	}
	unpaidFines, err := controller.circulation.CountFinesByStatus(entities.FineStatusUnpaid)
	if err != nil {
		respondInternalError(c, err, "dashboard")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"total_books":    totalBooks,
		"total_students": totalStudents,
		"books_issued":   issued,
		"books_overdue":  overdue,
		"unpaid_fines":   unpaidFines,
	})
}
