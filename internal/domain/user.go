package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role within the portal
type Role string

const (
	RoleAdmin                Role = "ADMIN"
	RoleManager              Role = "MANAGER"
	RoleLoanOfficer          Role = "LOAN_OFFICER"
	RoleDisclosureSpecialist Role = "DISCLOSURE_SPECIALIST"
	RoleVA                   Role = "VA"
	RoleVATitle              Role = "VA_TITLE"
	RoleVAHOI                Role = "VA_HOI"
	RoleVAPayoff             Role = "VA_PAYOFF"
	RoleVAAppraisal          Role = "VA_APPRAISAL"
	RoleQC                   Role = "QC"
	RoleProcessorJr          Role = "PROCESSOR_JR"
	RoleProcessorSr          Role = "PROCESSOR_SR"
)

// AllRoles lists every valid role value
var AllRoles = []Role{
	RoleAdmin, RoleManager, RoleLoanOfficer, RoleDisclosureSpecialist,
	RoleVA, RoleVATitle, RoleVAHOI, RoleVAPayoff, RoleVAAppraisal,
	RoleQC, RoleProcessorJr, RoleProcessorSr,
}

// IsValidRole reports whether r is one of the defined roles
func IsValidRole(r Role) bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsVASubRole reports whether r is one of the VA specialist sub-roles
func IsVASubRole(r Role) bool {
	switch r {
	case RoleVATitle, RoleVAHOI, RoleVAPayoff, RoleVAAppraisal:
		return true
	default:
		return false
	}
}

// User represents a portal account. Users are never hard-deleted; deactivation
// flips IsActive to false.
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email" json:"email"`
	Role         Role   `gorm:"type:varchar(50);not null;index:idx_users_role" json:"role"`
	IsActive     bool   `gorm:"not null;default:true;index:idx_users_is_active" json:"is_active"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
}

// InviteToken is a single-use, time-bound token gating account creation
type InviteToken struct {
	BaseModel
	Token     string     `gorm:"type:varchar(128);not null;uniqueIndex:uq_invite_tokens_token" json:"-"`
	Email     string     `gorm:"type:varchar(255);not null;index:idx_invite_tokens_email" json:"email"`
	Role      Role       `gorm:"type:varchar(50);not null" json:"role"`
	InvitedBy uuid.UUID  `gorm:"type:uuid;not null" json:"invited_by"`
	ExpiresAt time.Time  `gorm:"type:timestamp;not null;index:idx_invite_tokens_expires_at" json:"expires_at"`
	UsedAt    *time.Time `gorm:"type:timestamp" json:"used_at,omitempty"`
}

// IsUsable reports whether the invite can still be accepted at time now
func (t *InviteToken) IsUsable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

// PasswordResetToken is a single-use, time-bound token gating password changes
type PasswordResetToken struct {
	BaseModel
	Token     string     `gorm:"type:varchar(128);not null;uniqueIndex:uq_password_reset_tokens_token" json:"-"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_password_reset_tokens_user_id" json:"user_id"`
	ExpiresAt time.Time  `gorm:"type:timestamp;not null;index:idx_password_reset_tokens_expires_at" json:"expires_at"`
	UsedAt    *time.Time `gorm:"type:timestamp" json:"used_at,omitempty"`
}

// IsUsable reports whether the reset token can still be redeemed at time now
func (t *PasswordResetToken) IsUsable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// TableName specifies the table name for InviteToken
func (InviteToken) TableName() string {
	return "invite_tokens"
}

// TableName specifies the table name for PasswordResetToken
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
