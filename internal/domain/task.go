package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the state of a work item in the task queue
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
)

// IsValidTaskStatus reports whether s is one of the defined statuses
func IsValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityNormal TaskPriority = "NORMAL"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// TaskKind is an optional fine-grained task type. VA kinds constrain which
// attachment purposes a task accepts.
type TaskKind string

const (
	TaskKindVATitle     TaskKind = "VA_TITLE"
	TaskKindVAHOI       TaskKind = "VA_HOI"
	TaskKindVAPayoff    TaskKind = "VA_PAYOFF"
	TaskKindVAAppraisal TaskKind = "VA_APPRAISAL"
	TaskKindSubmitQC    TaskKind = "SUBMIT_QC"
)

// IsVAKind reports whether k is one of the VA specialist task kinds
func IsVAKind(k TaskKind) bool {
	switch k {
	case TaskKindVATitle, TaskKindVAHOI, TaskKindVAPayoff, TaskKindVAAppraisal:
		return true
	default:
		return false
	}
}

// Task represents a work item on a loan. Either AssignedRole, AssignedUserID,
// or both may be set.
type Task struct {
	BaseModel
	LoanID         uuid.UUID    `gorm:"type:uuid;not null;index:idx_tasks_loan_id" json:"loan_id"`
	Title          string       `gorm:"type:varchar(255);not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Status         TaskStatus   `gorm:"type:varchar(50);not null;default:'PENDING';index:idx_tasks_status" json:"status"`
	Priority       TaskPriority `gorm:"type:varchar(20);not null;default:'NORMAL'" json:"priority"`
	Kind           *TaskKind    `gorm:"type:varchar(50);index:idx_tasks_kind" json:"kind,omitempty"`
	WorkflowState  string       `gorm:"type:varchar(100)" json:"workflow_state"`
	AssignedRole   *Role        `gorm:"type:varchar(50);index:idx_tasks_assigned_role" json:"assigned_role,omitempty"`
	AssignedUserID *uuid.UUID   `gorm:"type:uuid;index:idx_tasks_assigned_user_id" json:"assigned_user_id,omitempty"`
	DueDate        *time.Time   `gorm:"type:timestamp;index:idx_tasks_due_date" json:"due_date,omitempty"`
	CompletedAt    *time.Time   `gorm:"type:timestamp" json:"completed_at,omitempty"`
	Loan           Loan         `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"loan,omitempty"`
}

// TaskTemplate is a static rule mapping a coarse loan stage to a task the
// workflow engine should spawn when a loan enters that stage.
type TaskTemplate struct {
	BaseModel
	Stage         LoanStage `gorm:"type:varchar(50);not null;index:idx_task_templates_stage" json:"stage"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	AssignedRole  *Role     `gorm:"type:varchar(50)" json:"assigned_role,omitempty"`
	Kind          *TaskKind `gorm:"type:varchar(50)" json:"kind,omitempty"`
	DueOffsetDays int       `gorm:"not null;default:0" json:"due_offset_days"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// TableName specifies the table name for TaskTemplate
func (TaskTemplate) TableName() string {
	return "task_templates"
}
