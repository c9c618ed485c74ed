package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loan-portal-api/internal/client"
	"loan-portal-api/internal/repository"
)

// CleanupJob harvests abandoned TEMP attachments and expired invite and
// password-reset tokens. An attachment row whose upload was never finalized
// keeps both a dangling blob and a dead DB row; the blob is removed first so
// a failed S3 delete leaves the row for the next run.
type CleanupJob struct {
	attachmentRepo repository.AttachmentRepository
	tokenRepo      repository.TokenRepository
	storage        client.StorageClient
	logger         *zap.Logger
}

// NewCleanupJob creates a new CleanupJob instance
func NewCleanupJob(
	attachmentRepo repository.AttachmentRepository,
	tokenRepo repository.TokenRepository,
	storage client.StorageClient,
	logger *zap.Logger,
) *CleanupJob {
	return &CleanupJob{
		attachmentRepo: attachmentRepo,
		tokenRepo:      tokenRepo,
		storage:        storage,
		logger:         logger,
	}
}

// Run executes one cleanup pass. Satisfies cron.Job.
func (j *CleanupJob) Run() {
	ctx := context.Background()

	j.cleanupExpiredAttachments(ctx)
	j.cleanupExpiredTokens(ctx)
}

func (j *CleanupJob) cleanupExpiredAttachments(ctx context.Context) {
	if j.storage == nil {
		return
	}
	expired, err := j.attachmentRepo.FindExpiredTemp(ctx)
	if err != nil {
		j.logger.Error("failed to find expired temp attachments", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	j.logger.Info("cleaning up expired temp attachments", zap.Int("count", len(expired)))

	var deletedIDs []uuid.UUID
	failed := 0
	for _, attachment := range expired {
		if err := j.storage.DeleteFile(ctx, attachment.StoragePath); err != nil {
			j.logger.Error("failed to delete file from storage",
				zap.String("attachment_id", attachment.ID.String()),
				zap.String("key", attachment.StoragePath),
				zap.Error(err))
			failed++
			continue
		}
		deletedIDs = append(deletedIDs, attachment.ID)
	}

	if len(deletedIDs) > 0 {
		if err := j.attachmentRepo.DeleteBatch(ctx, deletedIDs); err != nil {
			j.logger.Error("failed to delete attachment rows",
				zap.Int("count", len(deletedIDs)), zap.Error(err))
			return
		}
	}

	j.logger.Info("attachment cleanup finished",
		zap.Int("deleted", len(deletedIDs)),
		zap.Int("failed", failed))
}

func (j *CleanupJob) cleanupExpiredTokens(ctx context.Context) {
	deleted, err := j.tokenRepo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("failed to delete expired tokens", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.logger.Info("expired tokens deleted", zap.Int64("count", deleted))
	}
}
