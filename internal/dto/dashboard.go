package dto

import (
	"time"

	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
)

// StageCountResponse is one bucket of the loan-stage summary
type StageCountResponse struct {
	Stage domain.LoanStage `json:"stage"`
	Count int64            `json:"count"`
}

// RoleCountResponse is one bucket of the open-task summary
type RoleCountResponse struct {
	Role  domain.Role `json:"role"`
	Count int64       `json:"count"`
}

// DashboardResponse is the role-scoped landing view
type DashboardResponse struct {
	LoansByStage    []StageCountResponse `json:"loans_by_stage"`
	OpenTasksByRole []RoleCountResponse  `json:"open_tasks_by_role,omitempty"`
	MyOpenTasks     []TaskResponse       `json:"my_open_tasks,omitempty"`
}

// AuditLogResponse is the API representation of an audit entry
type AuditLogResponse struct {
	ID        uuid.UUID          `json:"id"`
	ActorID   uuid.UUID          `json:"actor_id"`
	Action    domain.AuditAction `json:"action"`
	LoanID    *uuid.UUID         `json:"loan_id,omitempty"`
	Details   interface{}        `json:"details,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
