package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/response"
	"loan-portal-api/internal/service"
)

// ClientHandler exposes the per-loan client document folder
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// GetFolder handles GET /loans/:id/documents?folder=
func (h *ClientHandler) GetFolder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	loanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	folder, err := h.clientService.GetFolderForLoan(c.Request.Context(), actor, loanID, c.Query("folder"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, folder)
}

// UploadDocument handles POST /loans/:id/documents/presign?folder=&tag=
func (h *ClientHandler) UploadDocument(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	loanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	resp, err := h.clientService.UploadDocument(c.Request.Context(), actor, loanID, &req, c.Query("folder"), c.Query("tag"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, resp)
}

// GetDocumentDownloadURL handles GET /documents/:id/download-url
func (h *ClientHandler) GetDocumentDownloadURL(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	documentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.clientService.GetDocumentDownloadURL(c.Request.Context(), actor, documentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}
