package domain

import (
	"github.com/google/uuid"
)

// LoanStage is the coarse workflow phase of a loan. It drives task-template
// expansion and is independent of the fine-grained Kanban pipeline stage.
type LoanStage string

const (
	StageIntake             LoanStage = "INTAKE"
	StageDisclosuresPending LoanStage = "DISCLOSURES_PENDING"
	StageDisclosuresSigned  LoanStage = "DISCLOSURES_SIGNED"
	StageSubmitToUWPrep     LoanStage = "SUBMIT_TO_UW_PREP"
	StageSubmittedToUW      LoanStage = "SUBMITTED_TO_UW"
	StageConditionallyAppr  LoanStage = "CONDITIONALLY_APPROVED"
	StageClearToClose       LoanStage = "CLEAR_TO_CLOSE"
	StageClosing            LoanStage = "CLOSING"
	StageFunded             LoanStage = "FUNDED"
)

// AllLoanStages lists every valid coarse stage value
var AllLoanStages = []LoanStage{
	StageIntake, StageDisclosuresPending, StageDisclosuresSigned,
	StageSubmitToUWPrep, StageSubmittedToUW, StageConditionallyAppr,
	StageClearToClose, StageClosing, StageFunded,
}

// IsValidLoanStage reports whether s is one of the defined stages
func IsValidLoanStage(s LoanStage) bool {
	for _, stage := range AllLoanStages {
		if s == stage {
			return true
		}
	}
	return false
}

// Loan represents a loan file owned by a loan officer
type Loan struct {
	BaseModel
	LoanNumber      string     `gorm:"type:varchar(100);not null;uniqueIndex:uq_loans_loan_number" json:"loan_number"`
	BorrowerName    string     `gorm:"type:varchar(255);not null" json:"borrower_name"`
	BorrowerPhone   string     `gorm:"type:varchar(50)" json:"borrower_phone"`
	BorrowerEmail   string     `gorm:"type:varchar(255)" json:"borrower_email"`
	Amount          float64    `gorm:"type:numeric(14,2)" json:"amount"`
	Program         string     `gorm:"type:varchar(100)" json:"program"`
	PropertyAddress string     `gorm:"type:text" json:"property_address"`
	Stage           LoanStage  `gorm:"type:varchar(50);not null;default:'INTAKE';index:idx_loans_stage" json:"stage"`
	LoanOfficerID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_loans_loan_officer_id" json:"loan_officer_id"`
	PipelineStageID *uuid.UUID `gorm:"type:uuid;index:idx_loans_pipeline_stage_id" json:"pipeline_stage_id"`
	ClientID        *uuid.UUID `gorm:"type:uuid;index:idx_loans_client_id" json:"client_id"`
	Tasks           []Task     `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	Notes           []PipelineNote `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}

// PipelineStage is one column on a loan officer's Kanban board. Order values
// are unique per owner and kept contiguous from 0 by reorder.
type PipelineStage struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_pipeline_stages_user_id;uniqueIndex:uq_pipeline_stages_user_order,priority:1" json:"user_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Order     int       `gorm:"column:stage_order;not null;uniqueIndex:uq_pipeline_stages_user_order,priority:2" json:"order"`
	Color     string    `gorm:"type:varchar(20);not null" json:"color"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
}

// PipelineNote is a free-text timestamped comment on a loan
type PipelineNote struct {
	BaseModel
	LoanID   uuid.UUID `gorm:"type:uuid;not null;index:idx_pipeline_notes_loan_id" json:"loan_id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Body     string    `gorm:"type:text;not null" json:"body"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// TableName specifies the table name for PipelineStage
func (PipelineStage) TableName() string {
	return "pipeline_stages"
}

// TableName specifies the table name for PipelineNote
func (PipelineNote) TableName() string {
	return "pipeline_notes"
}
