package dto

import (
	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
)

// CreateStageRequest adds a Kanban column to a board
type CreateStageRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
}

// UpdateStageRequest renames or recolors a column. Nil fields are untouched.
type UpdateStageRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// ReorderStagesRequest sets the full column order. StageIDs must list every
// column of the board exactly once.
type ReorderStagesRequest struct {
	StageIDs []uuid.UUID `json:"stage_ids" binding:"required,min=1"`
}

// StageResponse is the API representation of a Kanban column
type StageResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	Color     string    `json:"color"`
	IsDefault bool      `json:"is_default"`
}

// BoardColumnResponse is one column with the loans currently in it
type BoardColumnResponse struct {
	Stage StageResponse  `json:"stage"`
	Loans []LoanResponse `json:"loans"`
}

// BoardResponse is a loan officer's full Kanban board. Unassigned holds
// loans not yet placed in any column.
type BoardResponse struct {
	OwnerID    uuid.UUID             `json:"owner_id"`
	Columns    []BoardColumnResponse `json:"columns"`
	Unassigned []LoanResponse        `json:"unassigned"`
}

// ToStageResponse converts a domain pipeline stage
func ToStageResponse(s *domain.PipelineStage) StageResponse {
	return StageResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Name:      s.Name,
		Order:     s.Order,
		Color:     s.Color,
		IsDefault: s.IsDefault,
	}
}

// ToStageResponses converts a slice of domain pipeline stages
func ToStageResponses(stages []*domain.PipelineStage) []StageResponse {
	out := make([]StageResponse, 0, len(stages))
	for _, s := range stages {
		out = append(out, ToStageResponse(s))
	}
	return out
}
