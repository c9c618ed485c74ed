package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/response"
	"loan-portal-api/internal/service"
)

// PipelineHandler exposes the Kanban board endpoints
type PipelineHandler struct {
	pipelineService service.PipelineService
}

// NewPipelineHandler creates a new PipelineHandler
func NewPipelineHandler(pipelineService service.PipelineService) *PipelineHandler {
	return &PipelineHandler{pipelineService: pipelineService}
}

// GetBoard handles GET /pipeline/board?owner_id=
func (h *PipelineHandler) GetBoard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ownerID, ok := queryUUID(c, "owner_id")
	if !ok {
		return
	}

	board, err := h.pipelineService.GetBoard(c.Request.Context(), actor, ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, board)
}

// CreateStage handles POST /pipeline/stages?owner_id=
func (h *PipelineHandler) CreateStage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ownerID, ok := queryUUID(c, "owner_id")
	if !ok {
		return
	}

	var req dto.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	stage, err := h.pipelineService.CreateStage(c.Request.Context(), actor, ownerID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, stage)
}

// UpdateStage handles PATCH /pipeline/stages/:id
func (h *PipelineHandler) UpdateStage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	stageID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	stage, err := h.pipelineService.UpdateStage(c.Request.Context(), actor, stageID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, stage)
}

// ReorderStages handles PUT /pipeline/stages/order?owner_id=
func (h *PipelineHandler) ReorderStages(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ownerID, ok := queryUUID(c, "owner_id")
	if !ok {
		return
	}

	var req dto.ReorderStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	stages, err := h.pipelineService.ReorderStages(c.Request.Context(), actor, ownerID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, stages)
}

// DeleteStage handles DELETE /pipeline/stages/:id?fallback_id=
func (h *PipelineHandler) DeleteStage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	stageID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	fallbackID, ok := queryUUID(c, "fallback_id")
	if !ok {
		return
	}

	if err := h.pipelineService.DeleteStage(c.Request.Context(), actor, stageID, fallbackID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, gin.H{"message": "Stage deleted"})
}

// AssignLoan handles PUT /loans/:id/pipeline-stage
func (h *PipelineHandler) AssignLoan(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	loanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignPipelineStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.pipelineService.AssignLoanToStage(c.Request.Context(), actor, loanID, req.PipelineStageID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, gin.H{"message": "Loan moved"})
}

// AddNote handles POST /loans/:id/notes
func (h *PipelineHandler) AddNote(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	loanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	note, err := h.pipelineService.AddNote(c.Request.Context(), actor, loanID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, note)
}

// GetNotes handles GET /loans/:id/notes
func (h *PipelineHandler) GetNotes(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	loanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	notes, err := h.pipelineService.GetNotes(c.Request.Context(), actor, loanID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, notes)
}
