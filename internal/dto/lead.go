package dto

import (
	"github.com/google/uuid"
)

// LeadWebhookRequest is the inbound lead-intake delivery. SSN is accepted on
// the wire but scrubbed before anything is persisted.
type LeadWebhookRequest struct {
	LeadID          string  `json:"lead_id" binding:"required"`
	ExternalUserID  string  `json:"external_user_id" binding:"required"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	SSN             string  `json:"ssn"`
	LoanAmount      float64 `json:"loan_amount"`
	Program         string  `json:"program"`
	PropertyAddress string  `json:"property_address"`
	Notes           string  `json:"notes"`
}

// Lead webhook outcome statuses
const (
	LeadStatusCreated   = "created"
	LeadStatusDuplicate = "duplicate"
)

// LeadWebhookResponse reports the loan a delivery resolved to
type LeadWebhookResponse struct {
	Status string    `json:"status"`
	LoanID uuid.UUID `json:"loan_id"`
}
