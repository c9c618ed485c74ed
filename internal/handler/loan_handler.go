package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/response"
	"loan-portal-api/internal/service"
)

// maxImportSize caps the CSV upload body at 10 MiB
const maxImportSize = 10 << 20

// LoanHandler exposes loan CRUD, stage changes and CSV import
type LoanHandler struct {
	loanService     service.LoanService
	workflowService service.WorkflowService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService service.LoanService, workflowService service.WorkflowService) *LoanHandler {
	return &LoanHandler{
		loanService:     loanService,
		workflowService: workflowService,
	}
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, loan)
}

// GetLoan handles GET /loans/:id
func (h *LoanHandler) GetLoan(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	loanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	loan, err := h.loanService.GetLoan(c.Request.Context(), actor, loanID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, loan)
}

// ListLoans handles GET /loans
func (h *LoanHandler) ListLoans(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	loans, err := h.loanService.ListLoans(c.Request.Context(), actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, loans)
}

// UpdateLoan handles PATCH /loans/:id
func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	loanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	loan, err := h.loanService.UpdateLoan(c.Request.Context(), actor, loanID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, loan)
}

// ChangeStage handles POST /loans/:id/stage
func (h *LoanHandler) ChangeStage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	loanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	loan, err := h.workflowService.ChangeLoanStage(c.Request.Context(), actor, loanID, req.Stage)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, loan)
}

// ImportLoans handles POST /loans/import (multipart form, field "file")
func (h *LoanHandler) ImportLoans(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "CSV file is required (multipart field \"file\")")
		return
	}
	defer file.Close()

	result, err := h.loanService.ImportLoans(c.Request.Context(), actor, http.MaxBytesReader(c.Writer, file, maxImportSize))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}
