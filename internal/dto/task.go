package dto

import (
	"time"

	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
)

// CreateTaskRequest adds a manual task to a loan
type CreateTaskRequest struct {
	LoanID         uuid.UUID           `json:"loan_id" binding:"required"`
	Title          string              `json:"title" binding:"required"`
	Description    string              `json:"description"`
	Priority       domain.TaskPriority `json:"priority"`
	Kind           *domain.TaskKind    `json:"kind"`
	AssignedRole   *domain.Role        `json:"assigned_role"`
	AssignedUserID *uuid.UUID          `json:"assigned_user_id"`
	DueDate        *time.Time          `json:"due_date"`
}

// UpdateTaskStatusRequest moves a task through its status lifecycle
type UpdateTaskStatusRequest struct {
	Status domain.TaskStatus `json:"status" binding:"required"`
}

// TaskResponse is the API representation of a task
type TaskResponse struct {
	ID             uuid.UUID           `json:"id"`
	LoanID         uuid.UUID           `json:"loan_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         domain.TaskStatus   `json:"status"`
	Priority       domain.TaskPriority `json:"priority"`
	Kind           *domain.TaskKind    `json:"kind,omitempty"`
	WorkflowState  string              `json:"workflow_state,omitempty"`
	AssignedRole   *domain.Role        `json:"assigned_role,omitempty"`
	AssignedUserID *uuid.UUID          `json:"assigned_user_id,omitempty"`
	DueDate        *time.Time          `json:"due_date,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// ToTaskResponse converts a domain task to its API representation
func ToTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		LoanID:         t.LoanID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		Kind:           t.Kind,
		WorkflowState:  t.WorkflowState,
		AssignedRole:   t.AssignedRole,
		AssignedUserID: t.AssignedUserID,
		DueDate:        t.DueDate,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
	}
}

// ToTaskResponses converts a slice of domain tasks
func ToTaskResponses(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskResponse(t))
	}
	return out
}
