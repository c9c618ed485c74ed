package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/metrics"
	"loan-portal-api/internal/repository"
	"loan-portal-api/internal/response"
)

// leadDedupKeyPrefix namespaces the Redis fast-path cache. The DB unique
// key on lead_id stays authoritative; the cache only short-circuits repeats.
const (
	leadDedupKeyPrefix = "lead:dedup:"
	leadDedupTTL       = 24 * time.Hour

	fallbackBorrowerName = "Unknown Borrower"
)

// LeadService processes inbound lead-intake deliveries into loans
type LeadService interface {
	ProcessLead(ctx context.Context, req *dto.LeadWebhookRequest) (*dto.LeadWebhookResponse, error)
}

// leadServiceImpl is the implementation of LeadService
type leadServiceImpl struct {
	leadRepo     repository.LeadRepository
	loanRepo     repository.LoanRepository
	pipelineRepo repository.PipelineRepository
	redis        *redis.Client
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewLeadService creates a new instance of LeadService
func NewLeadService(
	leadRepo repository.LeadRepository,
	loanRepo repository.LoanRepository,
	pipelineRepo repository.PipelineRepository,
	redisClient *redis.Client,
	m *metrics.Metrics,
	logger *zap.Logger,
) LeadService {
	return &leadServiceImpl{
		leadRepo:     leadRepo,
		loanRepo:     loanRepo,
		pipelineRepo: pipelineRepo,
		redis:        redisClient,
		metrics:      m,
		logger:       logger,
	}
}

// ProcessLead handles one delivery. Idempotent on lead id: a repeat returns
// the loan the first delivery created. The external user id must already be
// mapped to an internal user or the delivery is rejected.
func (s *leadServiceImpl) ProcessLead(ctx context.Context, req *dto.LeadWebhookRequest) (*dto.LeadWebhookResponse, error) {
	if resp := s.checkDedupCache(ctx, req.LeadID); resp != nil {
		s.metrics.IncrementLeadDeduped()
		return resp, nil
	}

	existing, err := s.leadRepo.FindLeadByLeadID(ctx, req.LeadID)
	if err == nil {
		s.metrics.IncrementLeadDeduped()
		s.writeDedupCache(ctx, req.LeadID, existing.LoanID)
		return &dto.LeadWebhookResponse{Status: dto.LeadStatusDuplicate, LoanID: existing.LoanID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check lead", err.Error())
	}

	mapping, err := s.leadRepo.FindExternalUser(ctx, req.ExternalUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("External user is not mapped", req.ExternalUserID)
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to resolve external user", err.Error())
	}

	loan := &domain.Loan{
		LoanNumber:      leadLoanNumber(req.LeadID),
		BorrowerName:    borrowerNameFromLead(req),
		BorrowerPhone:   req.Phone,
		BorrowerEmail:   req.Email,
		Amount:          req.LoanAmount,
		Program:         req.Program,
		PropertyAddress: req.PropertyAddress,
		Stage:           domain.StageIntake,
		LoanOfficerID:   mapping.UserID,
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		// The loan number is derived from the lead id, so a unique key
		// collision here also means a concurrent delivery won the race.
		if winner, findErr := s.leadRepo.FindLeadByLeadID(ctx, req.LeadID); findErr == nil {
			s.metrics.IncrementLeadDeduped()
			s.writeDedupCache(ctx, req.LeadID, winner.LoanID)
			return &dto.LeadWebhookResponse{Status: dto.LeadStatusDuplicate, LoanID: winner.LoanID}, nil
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create loan from lead", err.Error())
	}

	payload, err := scrubbedPayload(req)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to serialize lead payload", err.Error())
	}
	lead := &domain.LeadMailboxLead{
		LeadID:  req.LeadID,
		LoanID:  loan.ID,
		Payload: payload,
	}
	if err := s.leadRepo.CreateLead(ctx, lead); err != nil {
		// Unique key collision means a concurrent delivery won the race;
		// return its loan instead of surfacing a conflict.
		if winner, findErr := s.leadRepo.FindLeadByLeadID(ctx, req.LeadID); findErr == nil && winner.LoanID != loan.ID {
			s.metrics.IncrementLeadDeduped()
			s.writeDedupCache(ctx, req.LeadID, winner.LoanID)
			return &dto.LeadWebhookResponse{Status: dto.LeadStatusDuplicate, LoanID: winner.LoanID}, nil
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to record lead", err.Error())
	}

	if notes := strings.TrimSpace(req.Notes); notes != "" {
		note := &domain.PipelineNote{
			LoanID:   loan.ID,
			AuthorID: mapping.UserID,
			Body:     notes,
		}
		if err := s.pipelineRepo.CreateNote(ctx, note); err != nil {
			s.logger.Warn("failed to attach lead notes", zap.String("lead_id", req.LeadID), zap.Error(err))
		}
	}

	s.writeDedupCache(ctx, req.LeadID, loan.ID)
	s.metrics.IncrementLeadCreated()
	s.logger.Info("lead processed",
		zap.String("lead_id", req.LeadID),
		zap.String("loan_id", loan.ID.String()),
		zap.String("officer_id", mapping.UserID.String()))

	return &dto.LeadWebhookResponse{Status: dto.LeadStatusCreated, LoanID: loan.ID}, nil
}

func (s *leadServiceImpl) checkDedupCache(ctx context.Context, leadID string) *dto.LeadWebhookResponse {
	if s.redis == nil {
		return nil
	}
	val, err := s.redis.Get(ctx, leadDedupKeyPrefix+leadID).Result()
	if err != nil {
		return nil
	}
	loanID, err := uuid.Parse(val)
	if err != nil {
		return nil
	}
	return &dto.LeadWebhookResponse{Status: dto.LeadStatusDuplicate, LoanID: loanID}
}

func (s *leadServiceImpl) writeDedupCache(ctx context.Context, leadID string, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, leadDedupKeyPrefix+leadID, loanID.String(), leadDedupTTL).Err(); err != nil {
		s.logger.Warn("failed to cache lead dedup key", zap.String("lead_id", leadID), zap.Error(err))
	}
}

// borrowerNameFromLead applies the fallback chain: first+last name, then
// email, then a constant
func borrowerNameFromLead(req *dto.LeadWebhookRequest) string {
	name := strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	if name != "" {
		return name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		return email
	}
	return fallbackBorrowerName
}

// leadLoanNumber derives a loan number for webhook-created loans
func leadLoanNumber(leadID string) string {
	return fmt.Sprintf("LEAD-%s", leadID)
}

// scrubbedPayload serializes the delivery with sensitive fields removed
func scrubbedPayload(req *dto.LeadWebhookRequest) ([]byte, error) {
	clone := *req
	clone.SSN = ""
	return json.Marshal(clone)
}
