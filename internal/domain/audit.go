package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditAction identifies the kind of administrative or workflow event recorded
type AuditAction string

const (
	AuditStageChanged    AuditAction = "STAGE_CHANGED"
	AuditUserCreated     AuditAction = "USER_CREATED"
	AuditUserDeactivated AuditAction = "USER_DEACTIVATED"
	AuditStageDeleted    AuditAction = "PIPELINE_STAGE_DELETED"
	AuditLoansImported   AuditAction = "LOANS_IMPORTED"
	AuditInviteSent      AuditAction = "INVITE_SENT"
	AuditExternalMapped  AuditAction = "EXTERNAL_MAPPING_CREATED"
	AuditTaskDeleted     AuditAction = "TASK_DELETED"
)

// AuditLog records administrative and stage-change actions
type AuditLog struct {
	BaseModel
	ActorID uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_logs_actor_id" json:"actor_id"`
	Action  AuditAction    `gorm:"type:varchar(100);not null;index:idx_audit_logs_action" json:"action"`
	LoanID  *uuid.UUID     `gorm:"type:uuid;index:idx_audit_logs_loan_id" json:"loan_id,omitempty"`
	Details datatypes.JSON `gorm:"type:jsonb" json:"details"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
