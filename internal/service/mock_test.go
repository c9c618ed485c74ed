package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/metrics"
	"loan-portal-api/internal/repository"
)

// newTestMetrics returns metrics backed by an isolated registry so tests do
// not collide on the default one
func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

// MockLoanRepository is a mock implementation of LoanRepository
type MockLoanRepository struct {
	CreateFunc                func(ctx context.Context, loan *domain.Loan) error
	FindByIDFunc              func(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	FindByLoanNumberFunc      func(ctx context.Context, loanNumber string) (*domain.Loan, error)
	ExistsByLoanNumberFunc    func(ctx context.Context, loanNumber string) (bool, error)
	FindByOfficerFunc         func(ctx context.Context, officerID uuid.UUID) ([]*domain.Loan, error)
	FindAllFunc               func(ctx context.Context) ([]*domain.Loan, error)
	UpdateFunc                func(ctx context.Context, loan *domain.Loan) error
	UpdateStageFunc           func(ctx context.Context, id uuid.UUID, stage domain.LoanStage) error
	SetPipelineStageFunc      func(ctx context.Context, id uuid.UUID, pipelineStageID *uuid.UUID) error
	SetClientIDFunc           func(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error
	ReassignPipelineStageFunc func(ctx context.Context, fromStageID uuid.UUID, toStageID *uuid.UUID) (int64, error)
	CountByStageFunc          func(ctx context.Context, officerID *uuid.UUID) ([]repository.StageCount, error)
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, loan)
	}
	return nil
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockLoanRepository) FindByLoanNumber(ctx context.Context, loanNumber string) (*domain.Loan, error) {
	if m.FindByLoanNumberFunc != nil {
		return m.FindByLoanNumberFunc(ctx, loanNumber)
	}
	return nil, nil
}

func (m *MockLoanRepository) ExistsByLoanNumber(ctx context.Context, loanNumber string) (bool, error) {
	if m.ExistsByLoanNumberFunc != nil {
		return m.ExistsByLoanNumberFunc(ctx, loanNumber)
	}
	return false, nil
}

func (m *MockLoanRepository) FindByOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.Loan, error) {
	if m.FindByOfficerFunc != nil {
		return m.FindByOfficerFunc(ctx, officerID)
	}
	return nil, nil
}

func (m *MockLoanRepository) FindAll(ctx context.Context) ([]*domain.Loan, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, loan)
	}
	return nil
}

func (m *MockLoanRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.LoanStage) error {
	if m.UpdateStageFunc != nil {
		return m.UpdateStageFunc(ctx, id, stage)
	}
	return nil
}

func (m *MockLoanRepository) SetPipelineStage(ctx context.Context, id uuid.UUID, pipelineStageID *uuid.UUID) error {
	if m.SetPipelineStageFunc != nil {
		return m.SetPipelineStageFunc(ctx, id, pipelineStageID)
	}
	return nil
}

func (m *MockLoanRepository) SetClientID(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error {
	if m.SetClientIDFunc != nil {
		return m.SetClientIDFunc(ctx, id, clientID)
	}
	return nil
}

func (m *MockLoanRepository) ReassignPipelineStage(ctx context.Context, fromStageID uuid.UUID, toStageID *uuid.UUID) (int64, error) {
	if m.ReassignPipelineStageFunc != nil {
		return m.ReassignPipelineStageFunc(ctx, fromStageID, toStageID)
	}
	return 0, nil
}

func (m *MockLoanRepository) CountByStage(ctx context.Context, officerID *uuid.UUID) ([]repository.StageCount, error) {
	if m.CountByStageFunc != nil {
		return m.CountByStageFunc(ctx, officerID)
	}
	return nil, nil
}

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	CreateFunc                  func(ctx context.Context, task *domain.Task) error
	CreateBatchFunc             func(ctx context.Context, tasks []*domain.Task) error
	FindByIDFunc                func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByLoanFunc              func(ctx context.Context, loanID uuid.UUID) ([]*domain.Task, error)
	FindQueueForRoleFunc        func(ctx context.Context, role domain.Role) ([]*domain.Task, error)
	FindQueueForUserFunc        func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	ExistsForLoanStageTitleFunc func(ctx context.Context, loanID uuid.UUID, workflowState, title string) (bool, error)
	UpdateFunc                  func(ctx context.Context, task *domain.Task) error
	DeleteFunc                  func(ctx context.Context, id uuid.UUID) error
	CountOpenByRoleFunc         func(ctx context.Context) ([]repository.RoleCount, error)
	FindTemplatesByStageFunc    func(ctx context.Context, stage domain.LoanStage) ([]*domain.TaskTemplate, error)
	CreateTemplateFunc          func(ctx context.Context, template *domain.TaskTemplate) error
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil
}

func (m *MockTaskRepository) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tasks)
	}
	return nil
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTaskRepository) FindByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Task, error) {
	if m.FindByLoanFunc != nil {
		return m.FindByLoanFunc(ctx, loanID)
	}
	return nil, nil
}

func (m *MockTaskRepository) FindQueueForRole(ctx context.Context, role domain.Role) ([]*domain.Task, error) {
	if m.FindQueueForRoleFunc != nil {
		return m.FindQueueForRoleFunc(ctx, role)
	}
	return nil, nil
}

func (m *MockTaskRepository) FindQueueForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	if m.FindQueueForUserFunc != nil {
		return m.FindQueueForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockTaskRepository) ExistsForLoanStageTitle(ctx context.Context, loanID uuid.UUID, workflowState, title string) (bool, error) {
	if m.ExistsForLoanStageTitleFunc != nil {
		return m.ExistsForLoanStageTitleFunc(ctx, loanID, workflowState, title)
	}
	return false, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, task)
	}
	return nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTaskRepository) CountOpenByRole(ctx context.Context) ([]repository.RoleCount, error) {
	if m.CountOpenByRoleFunc != nil {
		return m.CountOpenByRoleFunc(ctx)
	}
	return nil, nil
}

func (m *MockTaskRepository) FindTemplatesByStage(ctx context.Context, stage domain.LoanStage) ([]*domain.TaskTemplate, error) {
	if m.FindTemplatesByStageFunc != nil {
		return m.FindTemplatesByStageFunc(ctx, stage)
	}
	return nil, nil
}

func (m *MockTaskRepository) CreateTemplate(ctx context.Context, template *domain.TaskTemplate) error {
	if m.CreateTemplateFunc != nil {
		return m.CreateTemplateFunc(ctx, template)
	}
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	CreateFunc     func(ctx context.Context, entry *domain.AuditLog) error
	FindByLoanFunc func(ctx context.Context, loanID uuid.UUID) ([]*domain.AuditLog, error)
	FindRecentFunc func(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return nil
}

func (m *MockAuditRepository) FindByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.AuditLog, error) {
	if m.FindByLoanFunc != nil {
		return m.FindByLoanFunc(ctx, loanID)
	}
	return nil, nil
}

func (m *MockAuditRepository) FindRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	if m.FindRecentFunc != nil {
		return m.FindRecentFunc(ctx, limit)
	}
	return nil, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	CreateFunc                func(ctx context.Context, user *domain.User) error
	FindByIDFunc              func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmailFunc           func(ctx context.Context, email string) (*domain.User, error)
	FindAllFunc               func(ctx context.Context, includeInactive bool) ([]*domain.User, error)
	FindFirstActiveByRoleFunc func(ctx context.Context, role domain.Role) (*domain.User, error)
	UpdateFunc                func(ctx context.Context, user *domain.User) error
	DeactivateFunc            func(ctx context.Context, id uuid.UUID) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) FindAll(ctx context.Context, includeInactive bool) ([]*domain.User, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, includeInactive)
	}
	return nil, nil
}

func (m *MockUserRepository) FindFirstActiveByRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	if m.FindFirstActiveByRoleFunc != nil {
		return m.FindFirstActiveByRoleFunc(ctx, role)
	}
	return nil, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	return nil
}

// MockPipelineRepository is a mock implementation of PipelineRepository
type MockPipelineRepository struct {
	CreateFunc             func(ctx context.Context, stage *domain.PipelineStage) error
	CreateBatchFunc        func(ctx context.Context, stages []*domain.PipelineStage) error
	FindByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.PipelineStage, error)
	FindByOwnerFunc        func(ctx context.Context, ownerID uuid.UUID) ([]*domain.PipelineStage, error)
	CountByOwnerFunc       func(ctx context.Context, ownerID uuid.UUID) (int64, error)
	MaxOrderFunc           func(ctx context.Context, ownerID uuid.UUID) (int, error)
	UpdateFunc             func(ctx context.Context, stage *domain.PipelineStage) error
	ReorderFunc            func(ctx context.Context, ownerID uuid.UUID, orderedIDs []uuid.UUID) error
	DeleteWithReassignFunc func(ctx context.Context, stageID uuid.UUID, fallbackID *uuid.UUID) error
	CreateNoteFunc         func(ctx context.Context, note *domain.PipelineNote) error
	FindNotesByLoanFunc    func(ctx context.Context, loanID uuid.UUID) ([]*domain.PipelineNote, error)
}

func (m *MockPipelineRepository) Create(ctx context.Context, stage *domain.PipelineStage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, stage)
	}
	return nil
}

func (m *MockPipelineRepository) CreateBatch(ctx context.Context, stages []*domain.PipelineStage) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, stages)
	}
	return nil
}

func (m *MockPipelineRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PipelineStage, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPipelineRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.PipelineStage, error) {
	if m.FindByOwnerFunc != nil {
		return m.FindByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *MockPipelineRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if m.CountByOwnerFunc != nil {
		return m.CountByOwnerFunc(ctx, ownerID)
	}
	return 0, nil
}

func (m *MockPipelineRepository) MaxOrder(ctx context.Context, ownerID uuid.UUID) (int, error) {
	if m.MaxOrderFunc != nil {
		return m.MaxOrderFunc(ctx, ownerID)
	}
	return -1, nil
}

func (m *MockPipelineRepository) Update(ctx context.Context, stage *domain.PipelineStage) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, stage)
	}
	return nil
}

func (m *MockPipelineRepository) Reorder(ctx context.Context, ownerID uuid.UUID, orderedIDs []uuid.UUID) error {
	if m.ReorderFunc != nil {
		return m.ReorderFunc(ctx, ownerID, orderedIDs)
	}
	return nil
}

func (m *MockPipelineRepository) DeleteWithReassign(ctx context.Context, stageID uuid.UUID, fallbackID *uuid.UUID) error {
	if m.DeleteWithReassignFunc != nil {
		return m.DeleteWithReassignFunc(ctx, stageID, fallbackID)
	}
	return nil
}

func (m *MockPipelineRepository) CreateNote(ctx context.Context, note *domain.PipelineNote) error {
	if m.CreateNoteFunc != nil {
		return m.CreateNoteFunc(ctx, note)
	}
	return nil
}

func (m *MockPipelineRepository) FindNotesByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.PipelineNote, error) {
	if m.FindNotesByLoanFunc != nil {
		return m.FindNotesByLoanFunc(ctx, loanID)
	}
	return nil, nil
}

// MockAttachmentRepository is a mock implementation of AttachmentRepository
type MockAttachmentRepository struct {
	CreateFunc          func(ctx context.Context, attachment *domain.TaskAttachment) error
	FindByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.TaskAttachment, error)
	FindByTaskFunc      func(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAttachment, error)
	ConfirmFunc         func(ctx context.Context, id uuid.UUID) error
	FindExpiredTempFunc func(ctx context.Context) ([]*domain.TaskAttachment, error)
	DeleteFunc          func(ctx context.Context, id uuid.UUID) error
	DeleteBatchFunc     func(ctx context.Context, ids []uuid.UUID) error
}

func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *domain.TaskAttachment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, attachment)
	}
	return nil
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskAttachment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAttachment, error) {
	if m.FindByTaskFunc != nil {
		return m.FindByTaskFunc(ctx, taskID)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, id)
	}
	return nil
}

func (m *MockAttachmentRepository) FindExpiredTemp(ctx context.Context) ([]*domain.TaskAttachment, error) {
	if m.FindExpiredTempFunc != nil {
		return m.FindExpiredTempFunc(ctx)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockAttachmentRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if m.DeleteBatchFunc != nil {
		return m.DeleteBatchFunc(ctx, ids)
	}
	return nil
}

// MockClientRepository is a mock implementation of ClientRepository
type MockClientRepository struct {
	FindByIDFunc              func(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	FindByOwnerAndPhoneFunc   func(ctx context.Context, ownerID uuid.UUID, phone string) (*domain.Client, error)
	FindByOwnerAndLeadFunc    func(ctx context.Context, ownerID uuid.UUID, leadID string) (*domain.Client, error)
	EnsureForLoanFunc         func(ctx context.Context, loan *domain.Loan, client *domain.Client) (*domain.Client, error)
	CreateDocumentFunc        func(ctx context.Context, doc *domain.ClientDocument) error
	FindDocumentByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.ClientDocument, error)
	FindDocumentsByClientFunc func(ctx context.Context, clientID uuid.UUID, folder string) ([]*domain.ClientDocument, error)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockClientRepository) FindByOwnerAndPhone(ctx context.Context, ownerID uuid.UUID, phone string) (*domain.Client, error) {
	if m.FindByOwnerAndPhoneFunc != nil {
		return m.FindByOwnerAndPhoneFunc(ctx, ownerID, phone)
	}
	return nil, nil
}

func (m *MockClientRepository) FindByOwnerAndLead(ctx context.Context, ownerID uuid.UUID, leadID string) (*domain.Client, error) {
	if m.FindByOwnerAndLeadFunc != nil {
		return m.FindByOwnerAndLeadFunc(ctx, ownerID, leadID)
	}
	return nil, nil
}

func (m *MockClientRepository) EnsureForLoan(ctx context.Context, loan *domain.Loan, client *domain.Client) (*domain.Client, error) {
	if m.EnsureForLoanFunc != nil {
		return m.EnsureForLoanFunc(ctx, loan, client)
	}
	return nil, nil
}

func (m *MockClientRepository) CreateDocument(ctx context.Context, doc *domain.ClientDocument) error {
	if m.CreateDocumentFunc != nil {
		return m.CreateDocumentFunc(ctx, doc)
	}
	return nil
}

func (m *MockClientRepository) FindDocumentByID(ctx context.Context, id uuid.UUID) (*domain.ClientDocument, error) {
	if m.FindDocumentByIDFunc != nil {
		return m.FindDocumentByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockClientRepository) FindDocumentsByClient(ctx context.Context, clientID uuid.UUID, folder string) ([]*domain.ClientDocument, error) {
	if m.FindDocumentsByClientFunc != nil {
		return m.FindDocumentsByClientFunc(ctx, clientID, folder)
	}
	return nil, nil
}

// MockLeadRepository is a mock implementation of LeadRepository
type MockLeadRepository struct {
	FindExternalUserFunc   func(ctx context.Context, externalID string) (*domain.ExternalUser, error)
	CreateExternalUserFunc func(ctx context.Context, mapping *domain.ExternalUser) error
	FindLeadByLeadIDFunc   func(ctx context.Context, leadID string) (*domain.LeadMailboxLead, error)
	CreateLeadFunc         func(ctx context.Context, lead *domain.LeadMailboxLead) error
}

func (m *MockLeadRepository) FindExternalUser(ctx context.Context, externalID string) (*domain.ExternalUser, error) {
	if m.FindExternalUserFunc != nil {
		return m.FindExternalUserFunc(ctx, externalID)
	}
	return nil, nil
}

func (m *MockLeadRepository) CreateExternalUser(ctx context.Context, mapping *domain.ExternalUser) error {
	if m.CreateExternalUserFunc != nil {
		return m.CreateExternalUserFunc(ctx, mapping)
	}
	return nil
}

func (m *MockLeadRepository) FindLeadByLeadID(ctx context.Context, leadID string) (*domain.LeadMailboxLead, error) {
	if m.FindLeadByLeadIDFunc != nil {
		return m.FindLeadByLeadIDFunc(ctx, leadID)
	}
	return nil, nil
}

func (m *MockLeadRepository) CreateLead(ctx context.Context, lead *domain.LeadMailboxLead) error {
	if m.CreateLeadFunc != nil {
		return m.CreateLeadFunc(ctx, lead)
	}
	return nil
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	CreateInviteFunc      func(ctx context.Context, invite *domain.InviteToken) error
	FindInviteByTokenFunc func(ctx context.Context, token string) (*domain.InviteToken, error)
	RotateInviteFunc      func(ctx context.Context, email string, invite *domain.InviteToken) error
	MarkInviteUsedFunc    func(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	CreateResetFunc       func(ctx context.Context, reset *domain.PasswordResetToken) error
	FindResetByTokenFunc  func(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	MarkResetUsedFunc     func(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	DeleteExpiredFunc     func(ctx context.Context, before time.Time) (int64, error)
}

func (m *MockTokenRepository) CreateInvite(ctx context.Context, invite *domain.InviteToken) error {
	if m.CreateInviteFunc != nil {
		return m.CreateInviteFunc(ctx, invite)
	}
	return nil
}

func (m *MockTokenRepository) FindInviteByToken(ctx context.Context, token string) (*domain.InviteToken, error) {
	if m.FindInviteByTokenFunc != nil {
		return m.FindInviteByTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockTokenRepository) RotateInvite(ctx context.Context, email string, invite *domain.InviteToken) error {
	if m.RotateInviteFunc != nil {
		return m.RotateInviteFunc(ctx, email, invite)
	}
	return nil
}

func (m *MockTokenRepository) MarkInviteUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	if m.MarkInviteUsedFunc != nil {
		return m.MarkInviteUsedFunc(ctx, id, usedAt)
	}
	return nil
}

func (m *MockTokenRepository) CreateReset(ctx context.Context, reset *domain.PasswordResetToken) error {
	if m.CreateResetFunc != nil {
		return m.CreateResetFunc(ctx, reset)
	}
	return nil
}

func (m *MockTokenRepository) FindResetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	if m.FindResetByTokenFunc != nil {
		return m.FindResetByTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockTokenRepository) MarkResetUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	if m.MarkResetUsedFunc != nil {
		return m.MarkResetUsedFunc(ctx, id, usedAt)
	}
	return nil
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, before)
	}
	return 0, nil
}

// MockUnitOfWork runs the callback against the supplied mock repositories
// without opening a real transaction
type MockUnitOfWork struct {
	Loans repository.LoanRepository
	Tasks repository.TaskRepository
	Audit repository.AuditRepository

	WithinTxFunc func(ctx context.Context, fn func(r repository.Repos) error) error
}

func (m *MockUnitOfWork) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	if m.WithinTxFunc != nil {
		return m.WithinTxFunc(ctx, fn)
	}
	return fn(repository.Repos{
		Loans: m.Loans,
		Tasks: m.Tasks,
		Audit: m.Audit,
	})
}

// MockStorageClient is a mock implementation of client.StorageClient
type MockStorageClient struct {
	GenerateTaskFileKeyFunc   func(taskID uuid.UUID, fileName string) string
	GenerateClientFileKeyFunc func(clientID uuid.UUID, folder, fileName string) string
	PresignUploadFunc         func(ctx context.Context, key, contentType string) (string, error)
	PresignDownloadFunc       func(ctx context.Context, key string, ttl time.Duration) (string, error)
	DeleteFileFunc            func(ctx context.Context, key string) error
}

func (m *MockStorageClient) GenerateTaskFileKey(taskID uuid.UUID, fileName string) string {
	if m.GenerateTaskFileKeyFunc != nil {
		return m.GenerateTaskFileKeyFunc(taskID, fileName)
	}
	return "tasks/" + taskID.String() + "/" + fileName
}

func (m *MockStorageClient) GenerateClientFileKey(clientID uuid.UUID, folder, fileName string) string {
	if m.GenerateClientFileKeyFunc != nil {
		return m.GenerateClientFileKeyFunc(clientID, folder, fileName)
	}
	return "clients/" + clientID.String() + "/" + folder + "/" + fileName
}

func (m *MockStorageClient) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	if m.PresignUploadFunc != nil {
		return m.PresignUploadFunc(ctx, key, contentType)
	}
	return "https://storage.example.com/upload/" + key, nil
}

func (m *MockStorageClient) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.PresignDownloadFunc != nil {
		return m.PresignDownloadFunc(ctx, key, ttl)
	}
	return "https://storage.example.com/download/" + key, nil
}

func (m *MockStorageClient) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}
	return nil
}

// MockEmailClient is a mock implementation of client.EmailClient
type MockEmailClient struct {
	SendInviteFunc        func(to, inviteURL string) error
	SendPasswordResetFunc func(to, resetURL string) error
}

func (m *MockEmailClient) SendInvite(to, inviteURL string) error {
	if m.SendInviteFunc != nil {
		return m.SendInviteFunc(to, inviteURL)
	}
	return nil
}

func (m *MockEmailClient) SendPasswordReset(to, resetURL string) error {
	if m.SendPasswordResetFunc != nil {
		return m.SendPasswordResetFunc(to, resetURL)
	}
	return nil
}
