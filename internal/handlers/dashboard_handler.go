package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ITI-GP-2025/examination-service/internal/services"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

// DashboardHandler serves the organization rollups. Every route requires an
// explicit intake_id; there is no implicit "current intake".
type DashboardHandler struct {
	BaseHandler
	performance services.PerformanceServiceInterface
}

func NewDashboardHandler(performance services.PerformanceServiceInterface, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		performance: performance,
	}
}

// GetBranchDashboard rolls up one branch for an intake
// @Router /dashboards/branches/{id} [get]
func (h *DashboardHandler) GetBranchDashboard(c *gin.Context) {
	branchID := parseIDParam(c, "id")
	if branchID == 0 {
		return
	}
	intakeID := requiredUintQuery(c, "intake_id")
	if intakeID == 0 {
		return
	}

	dashboard, err := h.performance.GetBranchDashboard(c.Request.Context(), branchID, intakeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetTrackDashboard rolls up one track for an intake
// @Router /dashboards/tracks/{id} [get]
func (h *DashboardHandler) GetTrackDashboard(c *gin.Context) {
	trackID := parseIDParam(c, "id")
	if trackID == 0 {
		return
	}
	intakeID := requiredUintQuery(c, "intake_id")
	if intakeID == 0 {
		return
	}

	dashboard, err := h.performance.GetTrackDashboard(c.Request.Context(), trackID, intakeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetSystemDashboard rolls up the whole system for an intake, including the
// health indicators
// @Router /dashboards/system [get]
func (h *DashboardHandler) GetSystemDashboard(c *gin.Context) {
	intakeID := requiredUintQuery(c, "intake_id")
	if intakeID == 0 {
		return
	}

	dashboard, err := h.performance.GetSystemDashboard(c.Request.Context(), intakeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
