package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/openshelf/openshelf/internal/entities"
)

const sheetName = "Sheet1"

// headerStyle builds the bold white-on-blue header row style.
func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func writeSheet(w io.Writer, title string, headers []string, widths []float64, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	// Title row spanning the table width.
	endCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.MergeCell(sheetName, "A1", endCol+"1"); err != nil {
		return err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return err
	}

	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return err
		}
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+3)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// IssuedBooksExcel writes an issued-books register workbook.
func (g *Generator) IssuedBooksExcel(w io.Writer, status entities.LoanStatus) error {
	rows, err := g.loanRows(status)
	if err != nil {
		return err
	}

	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.Code, r.Title, r.Student, r.Membership, r.IssueDate, r.DueDate, r.ReturnDate, r.Status})
	}

	title := fmt.Sprintf("%s - Issued Books (%s)", g.libraryName, g.generatedAt())
	return writeSheet(w, title,
		[]string{"Book Code", "Title", "Student", "Membership ID", "Issue Date", "Due Date", "Return Date", "Status"},
		[]float64{12, 36, 24, 16, 13, 13, 13, 11},
		data)
}

// FinesExcel writes a fines register workbook.
func (g *Generator) FinesExcel(w io.Writer, status entities.FineStatus) error {
	rows, err := g.fineRows(status)
	if err != nil {
		return err
	}

	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.Student, r.Membership, r.BookTitle, r.Amount, r.OverdueDays, r.Status})
	}

	title := fmt.Sprintf("%s - Fines (%s)", g.libraryName, g.generatedAt())
	return writeSheet(w, title,
		[]string{"Student", "Membership ID", "Book", "Amount", "Overdue Days", "Status"},
		[]float64{24, 16, 36, 11, 13, 11},
		data)
}

// CatalogExcel writes the full catalog workbook.
func (g *Generator) CatalogExcel(w io.Writer) error {
	rows, err := g.bookRows()
	if err != nil {
		return err
	}

	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.Code, r.Title, r.Author, r.ISBN, r.Category, r.Total, r.Available, r.Rack})
	}

	title := fmt.Sprintf("%s - Catalog (%s)", g.libraryName, g.generatedAt())
	return writeSheet(w, title,
		[]string{"Code", "Title", "Author", "ISBN", "Category", "Total Copies", "Available", "Rack"},
		[]float64{12, 36, 24, 16, 16, 13, 11, 9},
		data)
}
