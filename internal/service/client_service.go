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

// ClientService exposes the per-loan document folder. The Client record
// behind a folder is created lazily on first access: dedup runs against the
// owner's existing clients by phone, then by lead id, and falls back to a
// fresh record. The upsert and the loan link commit together.
type ClientService interface {
	GetFolderForLoan(ctx context.Context, actor authz.Actor, loanID uuid.UUID, folder string) (*dto.ClientFolderResponse, error)
	UploadDocument(ctx context.Context, actor authz.Actor, loanID uuid.UUID, req *dto.PresignUploadRequest, folder, tag string) (*dto.PresignUploadResponse, error)
	GetDocumentDownloadURL(ctx context.Context, actor authz.Actor, documentID uuid.UUID) (*dto.DownloadURLResponse, error)
}

// clientServiceImpl is the implementation of ClientService
type clientServiceImpl struct {
	clientRepo     repository.ClientRepository
	loanRepo       repository.LoanRepository
	storage        client.StorageClient
	downloadExpiry time.Duration
	logger         *zap.Logger
}

// NewClientService creates a new instance of ClientService
func NewClientService(
	clientRepo repository.ClientRepository,
	loanRepo repository.LoanRepository,
	storage client.StorageClient,
	downloadExpiry time.Duration,
	logger *zap.Logger,
) ClientService {
	return &clientServiceImpl{
		clientRepo:     clientRepo,
		loanRepo:       loanRepo,
		storage:        storage,
		downloadExpiry: downloadExpiry,
		logger:         logger,
	}
}

// GetFolderForLoan returns the loan's client folder, creating and linking
// the client record on first access
func (s *clientServiceImpl) GetFolderForLoan(ctx context.Context, actor authz.Actor, loanID uuid.UUID, folder string) (*dto.ClientFolderResponse, error) {
	_, cl, err := s.ensureClient(ctx, actor, loanID)
	if err != nil {
		return nil, err
	}

	docs, err := s.clientRepo.FindDocumentsByClient(ctx, cl.ID, folder)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load documents", err.Error())
	}

	return &dto.ClientFolderResponse{
		Client:    dto.ToClientResponse(cl),
		Documents: dto.ToClientDocumentResponses(docs),
	}, nil
}

// UploadDocument mints a signed PUT URL for a client document and records
// the metadata row
func (s *clientServiceImpl) UploadDocument(ctx context.Context, actor authz.Actor, loanID uuid.UUID, req *dto.PresignUploadRequest, folder, tag string) (*dto.PresignUploadResponse, error) {
	_, cl, err := s.ensureClient(ctx, actor, loanID)
	if err != nil {
		return nil, err
	}

	key := s.storage.GenerateClientFileKey(cl.ID, folder, req.FileName)
	uploadURL, err := s.storage.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeUpstream, "Failed to presign upload", err.Error())
	}

	doc := &domain.ClientDocument{
		ClientID:     cl.ID,
		Folder:       folder,
		Tag:          tag,
		StoragePath:  key,
		FileName:     req.FileName,
		ContentType:  req.ContentType,
		SizeBytes:    req.SizeBytes,
		UploadedByID: actor.UserID,
	}
	if err := s.clientRepo.CreateDocument(ctx, doc); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to record document", err.Error())
	}

	return &dto.PresignUploadResponse{
		AttachmentID: doc.ID,
		UploadURL:    uploadURL,
	}, nil
}

// GetDocumentDownloadURL authorizes via the owning client and mints a signed
// GET URL
func (s *clientServiceImpl) GetDocumentDownloadURL(ctx context.Context, actor authz.Actor, documentID uuid.UUID) (*dto.DownloadURLResponse, error) {
	doc, err := s.clientRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Document not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load document", err.Error())
	}

	cl, err := s.clientRepo.FindByID(ctx, doc.ClientID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load client", err.Error())
	}
	if !authz.Allowed(actor, authz.ResourceClientDocument, authz.Input{LoanOwnerID: cl.OwnerID}) {
		return nil, authz.ErrNotAuthorized()
	}

	url, err := s.storage.PresignDownload(ctx, doc.StoragePath, s.downloadExpiry)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeUpstream, "Failed to presign download", err.Error())
	}

	return &dto.DownloadURLResponse{
		URL:       url,
		ExpiresIn: int(s.downloadExpiry.Seconds()),
	}, nil
}

// ensureClient loads the loan, checks access and returns its client record,
// creating it through the deduplicating upsert when missing
func (s *clientServiceImpl) ensureClient(ctx context.Context, actor authz.Actor, loanID uuid.UUID) (*domain.Loan, *domain.Client, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFoundError("Loan not found", "")
		}
		return nil, nil, response.NewAppError(response.ErrCodeInternal, "Failed to load loan", err.Error())
	}
	if !authz.Allowed(actor, authz.ResourceClientDocument, authz.Input{LoanOwnerID: loan.LoanOfficerID}) {
		return nil, nil, authz.ErrNotAuthorized()
	}

	if loan.ClientID != nil {
		cl, err := s.clientRepo.FindByID(ctx, *loan.ClientID)
		if err == nil {
			return loan, cl, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewAppError(response.ErrCodeInternal, "Failed to load client", err.Error())
		}
	}

	candidate := &domain.Client{
		OwnerID: loan.LoanOfficerID,
		Name:    loan.BorrowerName,
		Email:   loan.BorrowerEmail,
	}
	if loan.BorrowerPhone != "" {
		phone := loan.BorrowerPhone
		candidate.Phone = &phone
	}

	cl, err := s.clientRepo.EnsureForLoan(ctx, loan, candidate)
	if err != nil {
		return nil, nil, response.NewAppError(response.ErrCodeInternal, "Failed to create client record", err.Error())
	}

	s.logger.Info("client record resolved for loan",
		zap.String("loan_id", loanID.String()),
		zap.String("client_id", cl.ID.String()))
	return loan, cl, nil
}
