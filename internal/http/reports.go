package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/reports"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type ReportsController struct {
	generator *reports.Generator
}

func NewReportsController(generator *reports.Generator) *ReportsController {
	return &ReportsController{generator: generator}
}

func attachmentName(prefix, ext string) string {
	return prefix + "_" + time.Now().Format("20060102") + "." + ext
}

func (controller *ReportsController) sendFile(c *gin.Context, buf *bytes.Buffer, contentType, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (controller *ReportsController) IssuedBooksExcel(c *gin.Context) {
	status := entities.LoanStatus(c.Query("status"))
	var buf bytes.Buffer
	if err := controller.generator.IssuedBooksExcel(&buf, status); err != nil {
		respondInternalError(c, err, "issued books excel")
		return
	}
	controller.sendFile(c, &buf, contentTypeXLSX, attachmentName("issued_books", "xlsx"))
}

func (controller *ReportsController) IssuedBooksPDF(c *gin.Context) {
	status := entities.LoanStatus(c.Query("status"))
	var buf bytes.Buffer
	if err := controller.generator.IssuedBooksPDF(&buf, status); err != nil {
		respondInternalError(c, err, "issued books pdf")
		return
	}
	controller.sendFile(c, &buf, contentTypePDF, attachmentName("issued_books", "pdf"))
}

func (controller *ReportsController) FinesExcel(c *gin.Context) {
	status := entities.FineStatus(c.Query("status"))
	var buf bytes.Buffer
	if err := controller.generator.FinesExcel(&buf, status); err != nil {
		respondInternalError(c, err, "fines excel")
		return
	}
	controller.sendFile(c, &buf, contentTypeXLSX, attachmentName("fines", "xlsx"))
}

func (controller *ReportsController) FinesPDF(c *gin.Context) {
	status := entities.FineStatus(c.Query("status"))
	var buf bytes.Buffer
	if err := controller.generator.FinesPDF(&buf, status); err != nil {
		respondInternalError(c, err, "fines pdf")
		return
	}
	controller.sendFile(c, &buf, contentTypePDF, attachmentName("fines", "pdf"))
}

func (controller *ReportsController) CatalogExcel(c *gin.Context) {
	var buf bytes.Buffer
	if err := controller.generator.CatalogExcel(&buf); err != nil {
		respondInternalError(c, err, "catalog excel")
		return
	}
	controller.sendFile(c, &buf, contentTypeXLSX, attachmentName("catalog", "xlsx"))
}

func (controller *ReportsController) CatalogPDF(c *gin.Context) {
	var buf bytes.Buffer
	if err := controller.generator.CatalogPDF(&buf); err != nil {
		respondInternalError(c, err, "catalog pdf")
		return
	}
	controller.sendFile(c, &buf, contentTypePDF, attachmentName("catalog", "pdf"))
}
