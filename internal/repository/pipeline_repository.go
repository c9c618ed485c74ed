package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

// PipelineRepository defines the interface for Kanban stage and note access
type PipelineRepository interface {
	Create(ctx context.Context, stage *domain.PipelineStage) error
	CreateBatch(ctx context.Context, stages []*domain.PipelineStage) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PipelineStage, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.PipelineStage, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	MaxOrder(ctx context.Context, ownerID uuid.UUID) (int, error)
	Update(ctx context.Context, stage *domain.PipelineStage) error
	// Reorder writes order = index for the supplied id list as one
	// all-or-nothing transaction.
	Reorder(ctx context.Context, ownerID uuid.UUID, orderedIDs []uuid.UUID) error
	// DeleteWithReassign reassigns loans pointing at the stage to the fallback
	// (nil means unassigned) and removes the stage row in one transaction.
	DeleteWithReassign(ctx context.Context, stageID uuid.UUID, fallbackID *uuid.UUID) error

	CreateNote(ctx context.Context, note *domain.PipelineNote) error
	FindNotesByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.PipelineNote, error)
}

// pipelineRepositoryImpl is the GORM implementation of PipelineRepository
type pipelineRepositoryImpl struct {
	db *gorm.DB
}

// NewPipelineRepository creates a new instance of PipelineRepository
func NewPipelineRepository(db *gorm.DB) PipelineRepository {
	return &pipelineRepositoryImpl{db: db}
}

// Create creates a new pipeline stage
func (r *pipelineRepositoryImpl) Create(ctx context.Context, stage *domain.PipelineStage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

// CreateBatch inserts several stages at once (default board seeding)
func (r *pipelineRepositoryImpl) CreateBatch(ctx context.Context, stages []*domain.PipelineStage) error {
	if len(stages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(stages).Error
}

// FindByID finds a stage by its ID
func (r *pipelineRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.PipelineStage, error) {
	var stage domain.PipelineStage
	if err := r.db.WithContext(ctx).First(&stage, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &stage, nil
}

// FindByOwner lists one officer's stages in board order
func (r *pipelineRepositoryImpl) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.PipelineStage, error) {
	var stages []*domain.PipelineStage
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("stage_order ASC").
		Find(&stages).Error; err != nil {
		return nil, err
	}
	return stages, nil
}

// CountByOwner counts an officer's stages, defaults included
func (r *pipelineRepositoryImpl) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.PipelineStage{}).
		Where("user_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MaxOrder returns the highest order value on an officer's board, -1 when the
// board is empty
func (r *pipelineRepositoryImpl) MaxOrder(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).
		Model(&domain.PipelineStage{}).
		Where("user_id = ?", ownerID).
		Select("max(stage_order)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// Update updates a stage
func (r *pipelineRepositoryImpl) Update(ctx context.Context, stage *domain.PipelineStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

// Reorder rewrites stage_order = index for each id, atomically. The two-pass
// write through an offset avoids tripping the per-owner unique index on
// intermediate states.
func (r *pipelineRepositoryImpl) Reorder(ctx context.Context, ownerID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.PipelineStage{}).
			Where("user_id = ?", ownerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(orderedIDs)) {
			return fmt.Errorf("reorder list has %d ids but owner has %d stages", len(orderedIDs), count)
		}

		offset := len(orderedIDs)
		for i, id := range orderedIDs {
			res := tx.Model(&domain.PipelineStage{}).
				Where("id = ? AND user_id = ?", id, ownerID).
				Update("stage_order", i+offset)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("stage %s not found on board of %s", id, ownerID)
			}
		}

		for i, id := range orderedIDs {
			if err := tx.Model(&domain.PipelineStage{}).
				Where("id = ? AND user_id = ?", id, ownerID).
				Update("stage_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteWithReassign never leaves a loan referencing a removed stage: loans
// are moved to the fallback first, in the same transaction.
func (r *pipelineRepositoryImpl) DeleteWithReassign(ctx context.Context, stageID uuid.UUID, fallbackID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Loan{}).
			Where("pipeline_stage_id = ?", stageID).
			Update("pipeline_stage_id", fallbackID).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.PipelineStage{}, "id = ?", stageID).Error
	})
}

// CreateNote appends a free-text note to a loan
func (r *pipelineRepositoryImpl) CreateNote(ctx context.Context, note *domain.PipelineNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// FindNotesByLoan lists a loan's notes, newest first
func (r *pipelineRepositoryImpl) FindNotesByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.PipelineNote, error) {
	var notes []*domain.PipelineNote
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}
