package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/service"
	"github.com/GTDGit/panel_api/internal/utils"
)

// DashboardHandler serves the overview counters.
type DashboardHandler struct {
	svc *service.DashboardService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats handles GET /v1/admin/dashboard
func (h *DashboardHandler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		utils.ServiceError(c, err, "Failed to load dashboard")
		return
	}
	utils.Success(c, 200, "Dashboard retrieved", st)
}
