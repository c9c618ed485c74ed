package repository

import (
	"context"

	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

// LeadRepository defines the interface for lead-intake mapping access
type LeadRepository interface {
	FindExternalUser(ctx context.Context, externalID string) (*domain.ExternalUser, error)
	CreateExternalUser(ctx context.Context, mapping *domain.ExternalUser) error
	FindLeadByLeadID(ctx context.Context, leadID string) (*domain.LeadMailboxLead, error)
	CreateLead(ctx context.Context, lead *domain.LeadMailboxLead) error
}

// leadRepositoryImpl is the GORM implementation of LeadRepository
type leadRepositoryImpl struct {
	db *gorm.DB
}

// NewLeadRepository creates a new instance of LeadRepository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepositoryImpl{db: db}
}

// FindExternalUser resolves an external identity to its internal mapping
func (r *leadRepositoryImpl) FindExternalUser(ctx context.Context, externalID string) (*domain.ExternalUser, error) {
	var mapping domain.ExternalUser
	if err := r.db.WithContext(ctx).First(&mapping, "external_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

// CreateExternalUser creates a new external identity mapping
func (r *leadRepositoryImpl) CreateExternalUser(ctx context.Context, mapping *domain.ExternalUser) error {
	return r.db.WithContext(ctx).Create(mapping).Error
}

// FindLeadByLeadID finds a processed lead by its idempotency key
func (r *leadRepositoryImpl) FindLeadByLeadID(ctx context.Context, leadID string) (*domain.LeadMailboxLead, error) {
	var lead domain.LeadMailboxLead
	if err := r.db.WithContext(ctx).First(&lead, "lead_id = ?", leadID).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// CreateLead records a processed lead delivery
func (r *leadRepositoryImpl) CreateLead(ctx context.Context, lead *domain.LeadMailboxLead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}
