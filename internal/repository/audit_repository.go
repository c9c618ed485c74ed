package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

// AuditRepository defines the interface for audit log access
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	FindByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.AuditLog, error)
	FindRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}

// auditRepositoryImpl is the GORM implementation of AuditRepository
type auditRepositoryImpl struct {
	db *gorm.DB
}

// NewAuditRepository creates a new instance of AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepositoryImpl{db: db}
}

// Create appends an audit entry
func (r *auditRepositoryImpl) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByLoan lists a loan's audit trail, newest first
func (r *auditRepositoryImpl) FindByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.AuditLog, error) {
	var entries []*domain.AuditLog
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindRecent lists the latest audit entries across all resources
func (r *auditRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []*domain.AuditLog
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
