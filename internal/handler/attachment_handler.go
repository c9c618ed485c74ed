package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/response"
	"loan-portal-api/internal/service"
)

// AttachmentHandler exposes the two-phase upload endpoints for task files
type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// PresignUpload handles POST /tasks/:id/attachments/presign
func (h *AttachmentHandler) PresignUpload(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	resp, err := h.attachmentService.PresignUpload(c.Request.Context(), actor, taskID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, resp)
}

// Finalize handles POST /attachments/:id/finalize
func (h *AttachmentHandler) Finalize(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	attachmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	attachment, err := h.attachmentService.Finalize(c.Request.Context(), actor, attachmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, attachment)
}

// GetDownloadURL handles GET /attachments/:id/download-url
func (h *AttachmentHandler) GetDownloadURL(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	attachmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.attachmentService.GetDownloadURL(c.Request.Context(), actor, attachmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// ListByTask handles GET /tasks/:id/attachments
func (h *AttachmentHandler) ListByTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	attachments, err := h.attachmentService.ListByTask(c.Request.Context(), actor, taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, attachments)
}
