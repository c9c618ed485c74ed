package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

// StageCount is one row of the per-stage dashboard aggregate
type StageCount struct {
	Stage domain.LoanStage `json:"stage"`
	Count int64            `json:"count"`
}

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	FindByLoanNumber(ctx context.Context, loanNumber string) (*domain.Loan, error)
	ExistsByLoanNumber(ctx context.Context, loanNumber string) (bool, error)
	FindByOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.Loan, error)
	FindAll(ctx context.Context) ([]*domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error
	UpdateStage(ctx context.Context, id uuid.UUID, stage domain.LoanStage) error
	SetPipelineStage(ctx context.Context, id uuid.UUID, pipelineStageID *uuid.UUID) error
	SetClientID(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error
	ReassignPipelineStage(ctx context.Context, fromStageID uuid.UUID, toStageID *uuid.UUID) (int64, error)
	CountByStage(ctx context.Context, officerID *uuid.UUID) ([]StageCount, error)
}

// loanRepositoryImpl is the GORM implementation of LoanRepository
type loanRepositoryImpl struct {
	db *gorm.DB
}

// NewLoanRepository creates a new instance of LoanRepository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepositoryImpl{db: db}
}

// Create creates a new loan
func (r *loanRepositoryImpl) Create(ctx context.Context, loan *domain.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// FindByID finds a loan by its ID
func (r *loanRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	var loan domain.Loan
	if err := r.db.WithContext(ctx).First(&loan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindByLoanNumber finds a loan by its globally unique loan number
func (r *loanRepositoryImpl) FindByLoanNumber(ctx context.Context, loanNumber string) (*domain.Loan, error) {
	var loan domain.Loan
	if err := r.db.WithContext(ctx).First(&loan, "loan_number = ?", loanNumber).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// ExistsByLoanNumber reports whether a loan with the given number exists
func (r *loanRepositoryImpl) ExistsByLoanNumber(ctx context.Context, loanNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Loan{}).
		Where("loan_number = ?", loanNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByOfficer lists loans owned by one loan officer
func (r *loanRepositoryImpl) FindByOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	if err := r.db.WithContext(ctx).
		Where("loan_officer_id = ?", officerID).
		Order("created_at DESC").
		Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// FindAll lists all loans (manager/admin views)
func (r *loanRepositoryImpl) FindAll(ctx context.Context) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// Update updates a loan
func (r *loanRepositoryImpl) Update(ctx context.Context, loan *domain.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// UpdateStage sets the coarse stage field only
func (r *loanRepositoryImpl) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.LoanStage) error {
	return r.db.WithContext(ctx).
		Model(&domain.Loan{}).
		Where("id = ?", id).
		Update("stage", stage).Error
}

// SetPipelineStage moves a loan to a Kanban column (nil clears it)
func (r *loanRepositoryImpl) SetPipelineStage(ctx context.Context, id uuid.UUID, pipelineStageID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Loan{}).
		Where("id = ?", id).
		Update("pipeline_stage_id", pipelineStageID).Error
}

// SetClientID links a loan to its backing client record
func (r *loanRepositoryImpl) SetClientID(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Loan{}).
		Where("id = ?", id).
		Update("client_id", clientID).Error
}

// ReassignPipelineStage moves every loan on one Kanban column to another
// column (or to unassigned when toStageID is nil)
func (r *loanRepositoryImpl) ReassignPipelineStage(ctx context.Context, fromStageID uuid.UUID, toStageID *uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Loan{}).
		Where("pipeline_stage_id = ?", fromStageID).
		Update("pipeline_stage_id", toStageID)
	return res.RowsAffected, res.Error
}

// CountByStage aggregates loan counts per coarse stage, optionally scoped to
// one officer
func (r *loanRepositoryImpl) CountByStage(ctx context.Context, officerID *uuid.UUID) ([]StageCount, error) {
	var counts []StageCount
	q := r.db.WithContext(ctx).
		Model(&domain.Loan{}).
		Select("stage, count(*) as count").
		Group("stage")
	if officerID != nil {
		q = q.Where("loan_officer_id = ?", *officerID)
	}
	if err := q.Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}
