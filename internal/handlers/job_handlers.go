package handlers

import (
	"net/http"

	"ubuxa-console/internal/common"
	"ubuxa-console/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobHandlers exposes manual triggers for background jobs.
type JobHandlers struct {
	scheduler *background.JobScheduler
}

func NewJobHandlers(scheduler *background.JobScheduler) *JobHandlers {
	return &JobHandlers{scheduler: scheduler}
}

// ListJobs reports the registered background jobs.
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": h.scheduler.JobNames(),
	})
}

// RefreshStats forces an immediate dashboard stats recomputation.
func (h *JobHandlers) RefreshStats(c echo.Context) error {
	if err := h.scheduler.TriggerStatsRefresh(c.Request().Context()); err != nil {
		return common.SendServerError(c, "Stats refresh failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Stats refreshed"})
}

func (h *JobHandlers) RegisterRoutes(protected *echo.Group) {
	protected.GET("/admin/jobs", h.ListJobs)
	protected.POST("/admin/jobs/stats-refresh", h.RefreshStats)
}
