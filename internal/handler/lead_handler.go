package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/response"
	"loan-portal-api/internal/service"
)

// LeadHandler receives lead-intake webhook deliveries
type LeadHandler struct {
	leadService service.LeadService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService service.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// ProcessLead handles POST /webhooks/leads
func (h *LeadHandler) ProcessLead(c *gin.Context) {
	var req dto.LeadWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "lead_id and external_user_id are required")
		return
	}

	resp, err := h.leadService.ProcessLead(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.Status == dto.LeadStatusDuplicate {
		status = http.StatusOK
	}
	response.SendSuccess(c, status, resp)
}
