package dto

import (
	"time"

	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
)

// PresignUploadRequest starts a two-phase upload against a task
type PresignUploadRequest struct {
	FileName    string                   `json:"file_name" binding:"required"`
	ContentType string                   `json:"content_type" binding:"required"`
	SizeBytes   int64                    `json:"size_bytes" binding:"required,min=1"`
	Purpose     domain.AttachmentPurpose `json:"purpose" binding:"required"`
}

// PresignUploadResponse returns the signed PUT URL and the TEMP row id the
// client must finalize after uploading
type PresignUploadResponse struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	UploadURL    string    `json:"upload_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DownloadURLResponse returns a short-lived signed GET URL
type DownloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// AttachmentResponse is the API representation of a task attachment
type AttachmentResponse struct {
	ID           uuid.UUID                `json:"id"`
	TaskID       uuid.UUID                `json:"task_id"`
	Purpose      domain.AttachmentPurpose `json:"purpose"`
	Status       domain.AttachmentStatus  `json:"status"`
	FileName     string                   `json:"file_name"`
	ContentType  string                   `json:"content_type"`
	SizeBytes    int64                    `json:"size_bytes"`
	UploadedByID uuid.UUID                `json:"uploaded_by_id"`
	CreatedAt    time.Time                `json:"created_at"`
}

// ToAttachmentResponse converts a domain attachment
func ToAttachmentResponse(a *domain.TaskAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:           a.ID,
		TaskID:       a.TaskID,
		Purpose:      a.Purpose,
		Status:       a.Status,
		FileName:     a.FileName,
		ContentType:  a.ContentType,
		SizeBytes:    a.SizeBytes,
		UploadedByID: a.UploadedByID,
		CreatedAt:    a.CreatedAt,
	}
}

// ToAttachmentResponses converts a slice of domain attachments
func ToAttachmentResponses(attachments []*domain.TaskAttachment) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, ToAttachmentResponse(a))
	}
	return out
}
