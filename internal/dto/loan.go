package dto

import (
	"time"

	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
)

// CreateLoanRequest is the payload for manual loan creation
type CreateLoanRequest struct {
	LoanNumber      string     `json:"loan_number" binding:"required"`
	BorrowerName    string     `json:"borrower_name" binding:"required"`
	BorrowerPhone   string     `json:"borrower_phone"`
	BorrowerEmail   string     `json:"borrower_email"`
	Amount          float64    `json:"amount"`
	Program         string     `json:"program"`
	PropertyAddress string     `json:"property_address"`
	LoanOfficerID   *uuid.UUID `json:"loan_officer_id"` // admin/manager only, defaults to caller
}

// UpdateLoanRequest carries partial loan updates. Nil fields are untouched.
type UpdateLoanRequest struct {
	BorrowerName    *string  `json:"borrower_name"`
	BorrowerPhone   *string  `json:"borrower_phone"`
	BorrowerEmail   *string  `json:"borrower_email"`
	Amount          *float64 `json:"amount"`
	Program         *string  `json:"program"`
	PropertyAddress *string  `json:"property_address"`
}

// ChangeStageRequest moves a loan to a new coarse stage through the
// workflow engine
type ChangeStageRequest struct {
	Stage domain.LoanStage `json:"stage" binding:"required"`
}

// AssignPipelineStageRequest moves a loan into a Kanban column (nil clears)
type AssignPipelineStageRequest struct {
	PipelineStageID *uuid.UUID `json:"pipeline_stage_id"`
}

// CreateNoteRequest adds a free-text note to a loan
type CreateNoteRequest struct {
	Body string `json:"body" binding:"required"`
}

// ImportLoansResponse reports the outcome of a bulk CSV import
type ImportLoansResponse struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// LoanResponse is the API representation of a loan
type LoanResponse struct {
	ID              uuid.UUID        `json:"id"`
	LoanNumber      string           `json:"loan_number"`
	BorrowerName    string           `json:"borrower_name"`
	BorrowerPhone   string           `json:"borrower_phone"`
	BorrowerEmail   string           `json:"borrower_email"`
	Amount          float64          `json:"amount"`
	Program         string           `json:"program"`
	PropertyAddress string           `json:"property_address"`
	Stage           domain.LoanStage `json:"stage"`
	LoanOfficerID   uuid.UUID        `json:"loan_officer_id"`
	PipelineStageID *uuid.UUID       `json:"pipeline_stage_id,omitempty"`
	ClientID        *uuid.UUID       `json:"client_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NoteResponse is the API representation of a pipeline note
type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	LoanID    uuid.UUID `json:"loan_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ToLoanResponse converts a domain loan to its API representation
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		ID:              l.ID,
		LoanNumber:      l.LoanNumber,
		BorrowerName:    l.BorrowerName,
		BorrowerPhone:   l.BorrowerPhone,
		BorrowerEmail:   l.BorrowerEmail,
		Amount:          l.Amount,
		Program:         l.Program,
		PropertyAddress: l.PropertyAddress,
		Stage:           l.Stage,
		LoanOfficerID:   l.LoanOfficerID,
		PipelineStageID: l.PipelineStageID,
		ClientID:        l.ClientID,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// ToLoanResponses converts a slice of domain loans
func ToLoanResponses(loans []*domain.Loan) []LoanResponse {
	out := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, ToLoanResponse(l))
	}
	return out
}

// ToNoteResponse converts a domain note to its API representation
func ToNoteResponse(n *domain.PipelineNote) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		LoanID:    n.LoanID,
		AuthorID:  n.AuthorID,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	}
}
