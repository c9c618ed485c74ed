package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"loan-portal-api/internal/domain"
)

// MockAttachmentRepository is a mock implementation of AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *domain.TaskAttachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskAttachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskAttachment), args.Error(1)
}

func (m *MockAttachmentRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAttachment, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TaskAttachment), args.Error(1)
}

func (m *MockAttachmentRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttachmentRepository) FindExpiredTemp(ctx context.Context) ([]*domain.TaskAttachment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TaskAttachment), args.Error(1)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttachmentRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) CreateInvite(ctx context.Context, invite *domain.InviteToken) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockTokenRepository) FindInviteByToken(ctx context.Context, token string) (*domain.InviteToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteToken), args.Error(1)
}

func (m *MockTokenRepository) RotateInvite(ctx context.Context, email string, invite *domain.InviteToken) error {
	args := m.Called(ctx, email, invite)
	return args.Error(0)
}

func (m *MockTokenRepository) MarkInviteUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *MockTokenRepository) CreateReset(ctx context.Context, reset *domain.PasswordResetToken) error {
	args := m.Called(ctx, reset)
	return args.Error(0)
}

func (m *MockTokenRepository) FindResetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordResetToken), args.Error(1)
}

func (m *MockTokenRepository) MarkResetUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockStorageClient is a mock implementation of StorageClient
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) GenerateTaskFileKey(taskID uuid.UUID, fileName string) string {
	args := m.Called(taskID, fileName)
	return args.String(0)
}

func (m *MockStorageClient) GenerateClientFileKey(clientID uuid.UUID, folder, fileName string) string {
	args := m.Called(clientID, folder, fileName)
	return args.String(0)
}

func (m *MockStorageClient) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func expiredAttachment(key string) *domain.TaskAttachment {
	expiredTime := time.Now().Add(-2 * time.Hour)
	return &domain.TaskAttachment{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		TaskID:       uuid.New(),
		Purpose:      domain.PurposeOther,
		Status:       domain.AttachmentStatusTemp,
		StoragePath:  key,
		FileName:     "file.pdf",
		ContentType:  "application/pdf",
		SizeBytes:    1024,
		UploadedByID: uuid.New(),
		ExpiresAt:    &expiredTime,
	}
}

func TestCleanupJob_Run_ExpiredAttachmentsDeleted(t *testing.T) {
	mockRepo := new(MockAttachmentRepository)
	mockTokens := new(MockTokenRepository)
	mockStorage := new(MockStorageClient)
	logger := zap.NewNop()

	job := NewCleanupJob(mockRepo, mockTokens, mockStorage, logger)

	att1 := expiredAttachment("tasks/a/title-report.pdf")
	att2 := expiredAttachment("tasks/b/hoi-binder.pdf")

	mockRepo.On("FindExpiredTemp", mock.Anything).Return([]*domain.TaskAttachment{att1, att2}, nil)
	mockStorage.On("DeleteFile", mock.Anything, "tasks/a/title-report.pdf").Return(nil)
	mockStorage.On("DeleteFile", mock.Anything, "tasks/b/hoi-binder.pdf").Return(nil)
	mockRepo.On("DeleteBatch", mock.Anything, []uuid.UUID{att1.ID, att2.ID}).Return(nil)
	mockTokens.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), nil)

	job.Run()

	mockRepo.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
	mockTokens.AssertExpectations(t)
}

func TestCleanupJob_Run_StorageFailureKeepsRow(t *testing.T) {
	mockRepo := new(MockAttachmentRepository)
	mockTokens := new(MockTokenRepository)
	mockStorage := new(MockStorageClient)
	logger := zap.NewNop()

	job := NewCleanupJob(mockRepo, mockTokens, mockStorage, logger)

	kept := expiredAttachment("tasks/a/unreachable.pdf")
	removed := expiredAttachment("tasks/b/removable.pdf")

	mockRepo.On("FindExpiredTemp", mock.Anything).Return([]*domain.TaskAttachment{kept, removed}, nil)
	mockStorage.On("DeleteFile", mock.Anything, "tasks/a/unreachable.pdf").Return(errors.New("s3 unavailable"))
	mockStorage.On("DeleteFile", mock.Anything, "tasks/b/removable.pdf").Return(nil)
	// Only the row whose blob is gone may be deleted; the other stays for the
	// next run
	mockRepo.On("DeleteBatch", mock.Anything, []uuid.UUID{removed.ID}).Return(nil)
	mockTokens.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), nil)

	job.Run()

	mockRepo.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestCleanupJob_Run_NoExpiredAttachments(t *testing.T) {
	mockRepo := new(MockAttachmentRepository)
	mockTokens := new(MockTokenRepository)
	mockStorage := new(MockStorageClient)
	logger := zap.NewNop()

	job := NewCleanupJob(mockRepo, mockTokens, mockStorage, logger)

	mockRepo.On("FindExpiredTemp", mock.Anything).Return([]*domain.TaskAttachment{}, nil)
	mockTokens.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(3), nil)

	job.Run()

	mockRepo.AssertExpectations(t)
	mockTokens.AssertExpectations(t)
	mockStorage.AssertNotCalled(t, "DeleteFile")
	mockRepo.AssertNotCalled(t, "DeleteBatch")
}
