package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

// AttachmentRepository defines the interface for task attachment data access
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.TaskAttachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskAttachment, error)
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAttachment, error)
	// Confirm flips a TEMP row to CONFIRMED; the row is the only durable
	// record that the upload succeeded.
	Confirm(ctx context.Context, id uuid.UUID) error
	FindExpiredTemp(ctx context.Context) ([]*domain.TaskAttachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error
}

// attachmentRepositoryImpl is the GORM implementation of AttachmentRepository
type attachmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new instance of AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

// Create creates a new attachment row
func (r *attachmentRepositoryImpl) Create(ctx context.Context, attachment *domain.TaskAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// FindByID finds an attachment by its ID
func (r *attachmentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskAttachment, error) {
	var attachment domain.TaskAttachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// FindByTask lists a task's attachments, newest first
func (r *attachmentRepositoryImpl) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAttachment, error) {
	var attachments []*domain.TaskAttachment
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Confirm marks an attachment as finalized. Only TEMP rows are eligible.
func (r *attachmentRepositoryImpl) Confirm(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&domain.TaskAttachment{}).
		Where("id = ? AND status = ?", id, domain.AttachmentStatusTemp).
		Updates(map[string]interface{}{
			"status":     domain.AttachmentStatusConfirmed,
			"expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("attachment %s not found or already confirmed", id)
	}
	return nil
}

// FindExpiredTemp finds TEMP rows whose finalize window passed
func (r *attachmentRepositoryImpl) FindExpiredTemp(ctx context.Context) ([]*domain.TaskAttachment, error) {
	var attachments []*domain.TaskAttachment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", domain.AttachmentStatusTemp, time.Now()).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Delete soft deletes an attachment
func (r *attachmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.TaskAttachment{}, "id = ?", id).Error
}

// DeleteBatch soft deletes several attachments at once (cleanup job)
func (r *attachmentRepositoryImpl) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&domain.TaskAttachment{}, "id IN ?", ids).Error
}
