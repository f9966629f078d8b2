package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/circulation"
	circulationdb "github.com/openshelf/openshelf/internal/database/circulation"
	"github.com/openshelf/openshelf/internal/entities"
)

type FinesController struct {
	service *circulation.Service
}

func NewFinesController(service *circulation.Service) *FinesController {
	return &FinesController{service: service}
}

func (controller *FinesController) ListFines(c *gin.Context) {
	status := entities.FineStatus(c.Query("status"))
	fines, err := controller.service.ListFines(status, c.Query("search"))
	if err != nil {
		respondInternalError(c, err, "list fines")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"fines": fines, "count": len(fines)})
}

func (controller *FinesController) MarkPaid(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fine, err := controller.service.MarkFinePaid(auth.GetUser(c), id, c.ClientIP())
	if err != nil {
		controller.respondFineError(c, err, "mark fine paid")
		return
	}
	c.IndentedJSON(http.StatusOK, fine)
}

func (controller *FinesController) Waive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fine, err := controller.service.WaiveFine(auth.GetUser(c), id, c.ClientIP())
	if err != nil {
		controller.respondFineError(c, err, "waive fine")
		return
	}
	c.IndentedJSON(http.StatusOK, fine)
}

func (controller *FinesController) respondFineError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, circulationdb.ErrFineNotFound):
		respondNotFound(c, "fine")
	case errors.Is(err, circulationdb.ErrFineSettled):
		respondConflict(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}
