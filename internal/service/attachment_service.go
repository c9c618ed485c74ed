package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loan-portal-api/internal/authz"
	"loan-portal-api/internal/client"
	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/repository"
	"loan-portal-api/internal/response"
)

// AttachmentService implements the two-phase upload flow against tasks.
// Presign writes a TEMP row and mints a signed PUT URL; the byte transfer
// happens outside this service; Finalize re-checks access and flips the row
// to CONFIRMED. TEMP rows left behind are harvested by the cleanup job.
type AttachmentService interface {
	PresignUpload(ctx context.Context, actor authz.Actor, taskID uuid.UUID, req *dto.PresignUploadRequest) (*dto.PresignUploadResponse, error)
	Finalize(ctx context.Context, actor authz.Actor, attachmentID uuid.UUID) (*dto.AttachmentResponse, error)
	GetDownloadURL(ctx context.Context, actor authz.Actor, attachmentID uuid.UUID) (*dto.DownloadURLResponse, error)
	ListByTask(ctx context.Context, actor authz.Actor, taskID uuid.UUID) ([]dto.AttachmentResponse, error)
}

// attachmentServiceImpl is the implementation of AttachmentService
type attachmentServiceImpl struct {
	attachmentRepo repository.AttachmentRepository
	taskRepo       repository.TaskRepository
	loanRepo       repository.LoanRepository
	storage        client.StorageClient
	tempExpiry     time.Duration
	downloadExpiry time.Duration
	logger         *zap.Logger
}

// NewAttachmentService creates a new instance of AttachmentService
func NewAttachmentService(
	attachmentRepo repository.AttachmentRepository,
	taskRepo repository.TaskRepository,
	loanRepo repository.LoanRepository,
	storage client.StorageClient,
	tempExpiry time.Duration,
	downloadExpiry time.Duration,
	logger *zap.Logger,
) AttachmentService {
	return &attachmentServiceImpl{
		attachmentRepo: attachmentRepo,
		taskRepo:       taskRepo,
		loanRepo:       loanRepo,
		storage:        storage,
		tempExpiry:     tempExpiry,
		downloadExpiry: downloadExpiry,
		logger:         logger,
	}
}

// PresignUpload authorizes the upload, writes the TEMP row and returns the
// signed PUT URL
func (s *attachmentServiceImpl) PresignUpload(ctx context.Context, actor authz.Actor, taskID uuid.UUID, req *dto.PresignUploadRequest) (*dto.PresignUploadResponse, error) {
	if !domain.IsValidPurpose(req.Purpose) {
		return nil, response.NewValidationError("Invalid attachment purpose", string(req.Purpose))
	}

	task, loan, err := s.findTaskWithLoan(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessAttachment(actor, task, loan.LoanOfficerID) {
		return nil, authz.ErrNotAuthorized()
	}
	if err := authz.CheckAttachmentPurpose(task, req.Purpose); err != nil {
		return nil, err
	}

	key := s.storage.GenerateTaskFileKey(taskID, req.FileName)
	uploadURL, err := s.storage.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeUpstream, "Failed to presign upload", err.Error())
	}

	expiresAt := time.Now().UTC().Add(s.tempExpiry)
	attachment := &domain.TaskAttachment{
		TaskID:       taskID,
		Purpose:      req.Purpose,
		Status:       domain.AttachmentStatusTemp,
		StoragePath:  key,
		FileName:     req.FileName,
		ContentType:  req.ContentType,
		SizeBytes:    req.SizeBytes,
		UploadedByID: actor.UserID,
		ExpiresAt:    &expiresAt,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to record attachment", err.Error())
	}

	return &dto.PresignUploadResponse{
		AttachmentID: attachment.ID,
		UploadURL:    uploadURL,
		ExpiresAt:    expiresAt,
	}, nil
}

// Finalize confirms a completed upload. Access is re-checked because the
// actor's permissions may have changed between presign and finalize.
func (s *attachmentServiceImpl) Finalize(ctx context.Context, actor authz.Actor, attachmentID uuid.UUID) (*dto.AttachmentResponse, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Attachment not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load attachment", err.Error())
	}

	task, loan, err := s.findTaskWithLoan(ctx, attachment.TaskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessAttachment(actor, task, loan.LoanOfficerID) {
		return nil, authz.ErrNotAuthorized()
	}

	if attachment.Status != domain.AttachmentStatusConfirmed {
		if err := s.attachmentRepo.Confirm(ctx, attachmentID); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to confirm attachment", err.Error())
		}
		attachment.Status = domain.AttachmentStatusConfirmed
		attachment.ExpiresAt = nil
	}

	resp := dto.ToAttachmentResponse(attachment)
	return &resp, nil
}

// GetDownloadURL authorizes and mints a short-lived signed GET URL
func (s *attachmentServiceImpl) GetDownloadURL(ctx context.Context, actor authz.Actor, attachmentID uuid.UUID) (*dto.DownloadURLResponse, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Attachment not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load attachment", err.Error())
	}
	if attachment.Status != domain.AttachmentStatusConfirmed {
		return nil, response.NewValidationError("Attachment upload was never finalized", "")
	}

	task, loan, err := s.findTaskWithLoan(ctx, attachment.TaskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessAttachment(actor, task, loan.LoanOfficerID) {
		return nil, authz.ErrNotAuthorized()
	}

	url, err := s.storage.PresignDownload(ctx, attachment.StoragePath, s.downloadExpiry)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeUpstream, "Failed to presign download", err.Error())
	}

	return &dto.DownloadURLResponse{
		URL:       url,
		ExpiresIn: int(s.downloadExpiry.Seconds()),
	}, nil
}

// ListByTask lists a task's attachments
func (s *attachmentServiceImpl) ListByTask(ctx context.Context, actor authz.Actor, taskID uuid.UUID) ([]dto.AttachmentResponse, error) {
	task, loan, err := s.findTaskWithLoan(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessAttachment(actor, task, loan.LoanOfficerID) {
		return nil, authz.ErrNotAuthorized()
	}

	attachments, err := s.attachmentRepo.FindByTask(ctx, taskID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load attachments", err.Error())
	}
	return dto.ToAttachmentResponses(attachments), nil
}

func (s *attachmentServiceImpl) findTaskWithLoan(ctx context.Context, taskID uuid.UUID) (*domain.Task, *domain.Loan, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFoundError("Task not found", "")
		}
		return nil, nil, response.NewAppError(response.ErrCodeInternal, "Failed to load task", err.Error())
	}
	loan, err := s.loanRepo.FindByID(ctx, task.LoanID)
	if err != nil {
		return nil, nil, response.NewAppError(response.ErrCodeInternal, "Failed to load parent loan", err.Error())
	}
	return task, loan, nil
}
