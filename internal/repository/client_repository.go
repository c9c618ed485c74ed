package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"loan-portal-api/internal/domain"
)

// ClientRepository defines the interface for client and document data access
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	FindByOwnerAndPhone(ctx context.Context, ownerID uuid.UUID, phone string) (*domain.Client, error)
	FindByOwnerAndLead(ctx context.Context, ownerID uuid.UUID, leadID string) (*domain.Client, error)
	// EnsureForLoan upserts the client for a loan and links the loan's
	// client_id in the same transaction.
	EnsureForLoan(ctx context.Context, loan *domain.Loan, client *domain.Client) (*domain.Client, error)

	CreateDocument(ctx context.Context, doc *domain.ClientDocument) error
	FindDocumentByID(ctx context.Context, id uuid.UUID) (*domain.ClientDocument, error)
	FindDocumentsByClient(ctx context.Context, clientID uuid.UUID, folder string) ([]*domain.ClientDocument, error)
}

// clientRepositoryImpl is the GORM implementation of ClientRepository
type clientRepositoryImpl struct {
	db *gorm.DB
}

// NewClientRepository creates a new instance of ClientRepository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepositoryImpl{db: db}
}

// FindByID finds a client by its ID
func (r *clientRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByOwnerAndPhone finds a client by its (owner, phone) dedup key
func (r *clientRepositoryImpl) FindByOwnerAndPhone(ctx context.Context, ownerID uuid.UUID, phone string) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.WithContext(ctx).
		First(&client, "owner_id = ? AND phone = ?", ownerID, phone).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByOwnerAndLead finds a client by its (owner, lead id) dedup key
func (r *clientRepositoryImpl) FindByOwnerAndLead(ctx context.Context, ownerID uuid.UUID, leadID string) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.WithContext(ctx).
		First(&client, "owner_id = ? AND lead_id = ?", ownerID, leadID).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// EnsureForLoan runs the lazy client upsert. The re-check happens inside the
// transaction so two concurrent folder accesses for the same loan converge on
// one client row; the unique indexes on (owner, phone) and (owner, lead_id)
// backstop drivers where the re-check alone cannot close the race.
func (r *clientRepositoryImpl) EnsureForLoan(ctx context.Context, loan *domain.Loan, client *domain.Client) (*domain.Client, error) {
	var result *domain.Client

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if loan.ClientID != nil {
			var existing domain.Client
			if err := tx.First(&existing, "id = ?", *loan.ClientID).Error; err == nil {
				result = &existing
				return nil
			}
		}

		if client.Phone != nil {
			var existing domain.Client
			err := tx.First(&existing, "owner_id = ? AND phone = ?", client.OwnerID, *client.Phone).Error
			if err == nil {
				result = &existing
				return tx.Model(&domain.Loan{}).Where("id = ?", loan.ID).Update("client_id", existing.ID).Error
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
		}
		if client.LeadID != nil {
			var existing domain.Client
			err := tx.First(&existing, "owner_id = ? AND lead_id = ?", client.OwnerID, *client.LeadID).Error
			if err == nil {
				result = &existing
				return tx.Model(&domain.Loan{}).Where("id = ?", loan.ID).Update("client_id", existing.ID).Error
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(client).Error; err != nil {
			return err
		}
		result = client
		return tx.Model(&domain.Loan{}).Where("id = ?", loan.ID).Update("client_id", client.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateDocument creates a client document row
func (r *clientRepositoryImpl) CreateDocument(ctx context.Context, doc *domain.ClientDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// FindDocumentByID finds a client document by its ID
func (r *clientRepositoryImpl) FindDocumentByID(ctx context.Context, id uuid.UUID) (*domain.ClientDocument, error) {
	var doc domain.ClientDocument
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindDocumentsByClient lists a client's documents, optionally filtered by
// folder
func (r *clientRepositoryImpl) FindDocumentsByClient(ctx context.Context, clientID uuid.UUID, folder string) ([]*domain.ClientDocument, error) {
	var docs []*domain.ClientDocument
	q := r.db.WithContext(ctx).Where("client_id = ?", clientID)
	if folder != "" {
		q = q.Where("folder = ?", folder)
	}
	if err := q.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
