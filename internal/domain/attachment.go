package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentPurpose describes why a file was attached to a task
type AttachmentPurpose string

const (
	PurposeProof AttachmentPurpose = "PROOF"
	PurposeOther AttachmentPurpose = "OTHER"
)

// IsValidPurpose reports whether p is one of the defined purposes
func IsValidPurpose(p AttachmentPurpose) bool {
	switch p {
	case PurposeProof, PurposeOther:
		return true
	default:
		return false
	}
}

// AttachmentStatus represents the upload lifecycle of an attachment row
type AttachmentStatus string

const (
	AttachmentStatusTemp      AttachmentStatus = "TEMP"      // presigned URL issued, upload not finalized
	AttachmentStatusConfirmed AttachmentStatus = "CONFIRMED" // finalize called, blob is durable
)

// TaskAttachment is the metadata row for a file uploaded against a task.
// StoragePath is the sole pointer into object storage; the blob itself is a
// weak reference owned by the storage gateway.
type TaskAttachment struct {
	BaseModel
	TaskID           uuid.UUID         `gorm:"type:uuid;not null;index:idx_task_attachments_task_id" json:"task_id"`
	Purpose          AttachmentPurpose `gorm:"type:varchar(20);not null;default:'OTHER'" json:"purpose"`
	Status           AttachmentStatus  `gorm:"type:varchar(20);not null;default:'TEMP';index:idx_task_attachments_status" json:"status"`
	StoragePath      string            `gorm:"type:text;not null" json:"storage_path"`
	FileName         string            `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType      string            `gorm:"type:varchar(100);not null" json:"content_type"`
	SizeBytes        int64             `gorm:"not null" json:"size_bytes"`
	UploadedByID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_task_attachments_uploaded_by" json:"uploaded_by_id"`
	ClientDocumentID *uuid.UUID        `gorm:"type:uuid" json:"client_document_id,omitempty"`
	ExpiresAt        *time.Time        `gorm:"type:timestamp;index:idx_task_attachments_expires_at" json:"expires_at,omitempty"`
	Task             Task              `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
}

// TableName specifies the table name for TaskAttachment
func (TaskAttachment) TableName() string {
	return "task_attachments"
}
