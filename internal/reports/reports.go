// Package reports renders circulation and catalog data into downloadable
// Excel and PDF documents.
package reports

import (
	"time"

	booksdb "github.com/openshelf/openshelf/internal/database/books"
	circulationdb "github.com/openshelf/openshelf/internal/database/circulation"
	"github.com/openshelf/openshelf/internal/entities"
)

type Generator struct {
	books       *booksdb.Repository
	circulation *circulationdb.Repository
	libraryName string
}

func NewGenerator(books *booksdb.Repository, circulation *circulationdb.Repository, libraryName string) *Generator {
	return &Generator{
		books:       books,
		circulation: circulation,
		libraryName: libraryName,
	}
}

// loanRow is a flattened issued-book record for tabular output.
type loanRow struct {
	Code       string
	Title      string
	Student    string
	Membership string
	IssueDate  string
	DueDate    string
	ReturnDate string
	Status     string
}

// fineRow is a flattened fine record for tabular output.
type fineRow struct {
	Student     string
	Membership  string
	BookTitle   string
	Amount      string
	OverdueDays int
	Status      string
}

// bookRow is a flattened catalog record for tabular output.
type bookRow struct {
	Code      string
	Title     string
	Author    string
	ISBN      string
	Category  string
	Total     int
	Available int
	Rack      string
}

const dateLayout = "2006-01-02"

func (g *Generator) loanRows(status entities.LoanStatus) ([]loanRow, error) {
	loans, err := g.circulation.ListLoans(status, "")
	if err != nil {
		return nil, err
	}

	rows := make([]loanRow, 0, len(loans))
	for _, loan := range loans {
		row := loanRow{
			Code:       loan.Book.Code,
			Title:      loan.Book.Title,
			Student:    loan.Student.FullName(),
			Membership: loan.Student.MembershipID,
			IssueDate:  loan.IssueDate.Format(dateLayout),
			DueDate:    loan.DueDate.Format(dateLayout),
			Status:     string(loan.Status),
		}
		if loan.ReturnDate != nil {
			row.ReturnDate = loan.ReturnDate.Format(dateLayout)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *Generator) fineRows(status entities.FineStatus) ([]fineRow, error) {
	fines, err := g.circulation.ListFines(status, "")
	if err != nil {
		return nil, err
	}

	rows := make([]fineRow, 0, len(fines))
	for _, fine := range fines {
		row := fineRow{
			Student:     fine.Student.FullName(),
			Membership:  fine.Student.MembershipID,
			Amount:      fine.Amount.StringFixed(2),
			OverdueDays: fine.OverdueDays,
			Status:      string(fine.Status),
		}
		if fine.IssuedBook.ID != 0 {
			row.BookTitle = fine.IssuedBook.Book.Title
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *Generator) bookRows() ([]bookRow, error) {
	books, err := g.books.ListBooks("", 0)
	if err != nil {
		return nil, err
	}

	rows := make([]bookRow, 0, len(books))
	for _, book := range books {
		row := bookRow{
			Code:      book.Code,
			Title:     book.Title,
			Author:    book.Author,
			ISBN:      book.ISBN,
			Total:     book.TotalCopies,
			Available: book.AvailableCopies,
			Rack:      book.RackNumber,
		}
		if book.Category != nil {
			row.Category = book.Category.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *Generator) generatedAt() string {
	return time.Now().Format("2006-01-02 15:04")
}
