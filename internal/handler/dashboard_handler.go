package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"loan-portal-api/internal/response"
	"loan-portal-api/internal/service"
)

// DashboardHandler exposes the role-scoped landing views and the audit query
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard handles GET /dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dashboard)
}

// GetAuditLog handles GET /audit?loan_id=&limit=
func (h *DashboardHandler) GetAuditLog(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	loanID, ok := queryUUID(c, "loan_id")
	if !ok {
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.dashboardService.GetAuditLog(c.Request.Context(), actor, loanID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, entries)
}
