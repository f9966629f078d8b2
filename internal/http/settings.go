package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/auth"
	settingsdb "github.com/openshelf/openshelf/internal/database/settings"
	"github.com/openshelf/openshelf/internal/entities"
)

type SettingsController struct {
	settings    *settingsdb.Repository
	activityLog *activity.Service
}

func NewSettingsController(settings *settingsdb.Repository, activityLog *activity.Service) *SettingsController {
	return &SettingsController{
		settings:    settings,
		activityLog: activityLog,
	}
}

func (controller *SettingsController) GetFineSettings(c *gin.Context) {
	settings, err := controller.settings.GetFineSettings()
	if err != nil {
		respondInternalError(c, err, "get fine settings")
		return
	}
	c.IndentedJSON(http.StatusOK, settings)
}

func (controller *SettingsController) UpdateFineSettings(c *gin.Context) {
	var req struct {
		FinePerDay     string `json:"fine_per_day" binding:"required"`
		LoanPeriodDays int    `json:"loan_period_days" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "fine_per_day and loan_period_days are required")
		return
	}

	finePerDay, err := decimal.NewFromString(req.FinePerDay)
	if err != nil || finePerDay.IsNegative() {
		respondBadRequest(c, "fine_per_day must be a non-negative decimal amount")
		return
	}
	if req.LoanPeriodDays < 1 {
		respondBadRequest(c, "loan_period_days must be at least 1")
		return
	}

	settings, err := controller.settings.UpdateFineSettings(finePerDay, req.LoanPeriodDays)
	if err != nil {
		respondInternalError(c, err, "update fine settings")
		return
	}

	controller.activityLog.Record(auth.GetUser(c), entities.ActivitySettingsEdited,
		"Updated fine settings: "+finePerDay.StringFixed(2)+" per day", c.ClientIP())
	c.IndentedJSON(http.StatusOK, settings)
}
