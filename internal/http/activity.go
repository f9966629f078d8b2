package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/activity"
	activitydb "github.com/openshelf/openshelf/internal/database/activity"
	"github.com/openshelf/openshelf/internal/entities"
)

type ActivityController struct {
	entries  *activitydb.Repository
	archiver *activity.Archiver
}

func NewActivityController(entries *activitydb.Repository, archiver *activity.Archiver) *ActivityController {
	return &ActivityController{
		entries:  entries,
		archiver: archiver,
	}
}

func (controller *ActivityController) ListEntries(c *gin.Context) {
	limit, offset := parsePagination(c)
	action := entities.ActivityAction(c.Query("action"))

	entries, total, err := controller.entries.ListEntries(action, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list activity")
		return
	}

	c.IndentedJSON(http.StatusOK, PaginatedResponse{
		Data:    entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(entries)) < total,
	})
}

// ExportArchive dumps the last 30 days of activity into a JSON file on disk
// and returns its path.
func (controller *ActivityController) ExportArchive(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -30)
	entries, err := controller.entries.ListEntriesSince(since)
	if err != nil {
		respondInternalError(c, err, "export activity")
		return
	}

	path, err := controller.archiver.SaveJSON(gin.H{
		"exported_at": time.Now().Format(time.RFC3339),
		"since":       since.Format(time.RFC3339),
		"entries":     entries,
	})
	if err != nil {
		respondInternalError(c, err, "export activity")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"path": path, "count": len(entries)})
}
