package reports

import (
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/openshelf/openshelf/internal/entities"
)

func newPDF(title, generatedAt string) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 6, "Generated "+generatedAt, "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
	return pdf
}

func writeTable(pdf *fpdf.Fpdf, headers []string, widths []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	fill := false
	pdf.SetFillColor(237, 242, 250)
	for _, row := range rows {
		for i, value := range row {
			pdf.CellFormat(widths[i], 7, value, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}
}

// IssuedBooksPDF writes an issued-books register document.
func (g *Generator) IssuedBooksPDF(w io.Writer, status entities.LoanStatus) error {
	rows, err := g.loanRows(status)
	if err != nil {
		return err
	}

	pdf := newPDF(g.libraryName+" - Issued Books", g.generatedAt())
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r.Code, r.Title, r.Student, r.Membership, r.IssueDate, r.DueDate, r.ReturnDate, r.Status})
	}
	writeTable(pdf,
		[]string{"Code", "Title", "Student", "Membership", "Issued", "Due", "Returned", "Status"},
		[]float64{22, 70, 44, 28, 25, 25, 25, 22},
		data)
	return pdf.Output(w)
}

// FinesPDF writes a fines register document.
func (g *Generator) FinesPDF(w io.Writer, status entities.FineStatus) error {
	rows, err := g.fineRows(status)
	if err != nil {
		return err
	}

	pdf := newPDF(g.libraryName+" - Fines", g.generatedAt())
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r.Student, r.Membership, r.BookTitle, r.Amount, itoa(r.OverdueDays), r.Status})
	}
	writeTable(pdf,
		[]string{"Student", "Membership", "Book", "Amount", "Overdue Days", "Status"},
		[]float64{50, 30, 90, 30, 30, 30},
		data)
	return pdf.Output(w)
}

// CatalogPDF writes a catalog listing document.
func (g *Generator) CatalogPDF(w io.Writer) error {
	rows, err := g.bookRows()
	if err != nil {
		return err
	}

	pdf := newPDF(g.libraryName+" - Catalog", g.generatedAt())
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r.Code, r.Title, r.Author, r.ISBN, r.Category, itoa(r.Total), itoa(r.Available), r.Rack})
	}
	writeTable(pdf,
		[]string{"Code", "Title", "Author", "ISBN", "Category", "Total", "Available", "Rack"},
		[]float64{20, 66, 48, 32, 34, 20, 22, 18},
		data)
	return pdf.Output(w)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
