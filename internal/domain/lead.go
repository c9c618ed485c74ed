package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExternalUser maps an external lead-intake identity to an internal user
type ExternalUser struct {
	BaseModel
	ExternalID string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_external_users_external_id" json:"external_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_external_users_user_id" json:"user_id"`
	Source     string    `gorm:"type:varchar(100);not null;default:'lead_mailbox'" json:"source"`
}

// LeadMailboxLead records one processed lead-intake delivery. LeadID is the
// idempotency key: a second delivery with the same id short-circuits to the
// loan created by the first.
type LeadMailboxLead struct {
	BaseModel
	LeadID  string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_lead_mailbox_leads_lead_id" json:"lead_id"`
	LoanID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_lead_mailbox_leads_loan_id" json:"loan_id"`
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload"` // raw delivery with sensitive fields scrubbed
}

// TableName specifies the table name for ExternalUser
func (ExternalUser) TableName() string {
	return "external_users"
}

// TableName specifies the table name for LeadMailboxLead
func (LeadMailboxLead) TableName() string {
	return "lead_mailbox_leads"
}
