package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loan-portal-api/internal/authz"
	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/metrics"
	"loan-portal-api/internal/repository"
	"loan-portal-api/internal/response"
)

// LoanService manages loan records: creation, listing scoped by role,
// updates and bulk CSV import.
type LoanService interface {
	CreateLoan(ctx context.Context, actor authz.Actor, req *dto.CreateLoanRequest) (*dto.LoanResponse, error)
	GetLoan(ctx context.Context, actor authz.Actor, loanID uuid.UUID) (*dto.LoanResponse, error)
	ListLoans(ctx context.Context, actor authz.Actor) ([]dto.LoanResponse, error)
	UpdateLoan(ctx context.Context, actor authz.Actor, loanID uuid.UUID, req *dto.UpdateLoanRequest) (*dto.LoanResponse, error)
	ImportLoans(ctx context.Context, actor authz.Actor, r io.Reader) (*dto.ImportLoansResponse, error)
}

// loanServiceImpl is the implementation of LoanService
type loanServiceImpl struct {
	loanRepo  repository.LoanRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewLoanService creates a new instance of LoanService
func NewLoanService(
	loanRepo repository.LoanRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) LoanService {
	return &loanServiceImpl{
		loanRepo:  loanRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		metrics:   m,
		logger:    logger,
	}
}

// CreateLoan creates a loan. Officers always own what they create;
// admins and managers may assign another officer.
func (s *loanServiceImpl) CreateLoan(ctx context.Context, actor authz.Actor, req *dto.CreateLoanRequest) (*dto.LoanResponse, error) {
	officerID := actor.UserID
	if req.LoanOfficerID != nil && *req.LoanOfficerID != actor.UserID {
		if !actor.CanManageAll() {
			return nil, authz.ErrNotAuthorized()
		}
		officer, err := s.userRepo.FindByID(ctx, *req.LoanOfficerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewNotFoundError("Loan officer not found", "")
			}
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to resolve loan officer", err.Error())
		}
		if !officer.IsActive {
			return nil, response.NewValidationError("Loan officer is deactivated", "")
		}
		officerID = officer.ID
	}

	exists, err := s.loanRepo.ExistsByLoanNumber(ctx, req.LoanNumber)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check loan number", err.Error())
	}
	if exists {
		return nil, response.NewAppError(response.ErrCodeAlreadyExists, "Loan number already exists", req.LoanNumber)
	}

	loan := &domain.Loan{
		LoanNumber:      req.LoanNumber,
		BorrowerName:    req.BorrowerName,
		BorrowerPhone:   req.BorrowerPhone,
		BorrowerEmail:   req.BorrowerEmail,
		Amount:          req.Amount,
		Program:         req.Program,
		PropertyAddress: req.PropertyAddress,
		Stage:           domain.StageIntake,
		LoanOfficerID:   officerID,
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create loan", err.Error())
	}

	s.metrics.IncrementLoanCreated()

	resp := dto.ToLoanResponse(loan)
	return &resp, nil
}

// GetLoan returns one loan after the ownership check
func (s *loanServiceImpl) GetLoan(ctx context.Context, actor authz.Actor, loanID uuid.UUID) (*dto.LoanResponse, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Loan not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load loan", err.Error())
	}
	if !authz.CanAccessLoan(actor, loan) {
		return nil, authz.ErrNotAuthorized()
	}

	resp := dto.ToLoanResponse(loan)
	return &resp, nil
}

// ListLoans returns all loans for admins and managers, own loans otherwise
func (s *loanServiceImpl) ListLoans(ctx context.Context, actor authz.Actor) ([]dto.LoanResponse, error) {
	var (
		loans []*domain.Loan
		err   error
	)
	if actor.CanManageAll() {
		loans, err = s.loanRepo.FindAll(ctx)
	} else {
		loans, err = s.loanRepo.FindByOfficer(ctx, actor.UserID)
	}
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load loans", err.Error())
	}
	return dto.ToLoanResponses(loans), nil
}

// UpdateLoan applies partial borrower/detail updates
func (s *loanServiceImpl) UpdateLoan(ctx context.Context, actor authz.Actor, loanID uuid.UUID, req *dto.UpdateLoanRequest) (*dto.LoanResponse, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Loan not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load loan", err.Error())
	}
	if !authz.CanAccessLoan(actor, loan) {
		return nil, authz.ErrNotAuthorized()
	}

	if req.BorrowerName != nil {
		loan.BorrowerName = *req.BorrowerName
	}
	if req.BorrowerPhone != nil {
		loan.BorrowerPhone = *req.BorrowerPhone
	}
	if req.BorrowerEmail != nil {
		loan.BorrowerEmail = *req.BorrowerEmail
	}
	if req.Amount != nil {
		loan.Amount = *req.Amount
	}
	if req.Program != nil {
		loan.Program = *req.Program
	}
	if req.PropertyAddress != nil {
		loan.PropertyAddress = *req.PropertyAddress
	}
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update loan", err.Error())
	}

	resp := dto.ToLoanResponse(loan)
	return &resp, nil
}

// csvHeader is the expected column layout of a bulk import file
var csvHeader = []string{"loan_number", "borrower_name", "borrower_phone", "borrower_email", "amount", "program", "property_address"}

// ImportLoans reads a CSV and creates one loan per row, skipping rows whose
// loan number already exists. Malformed rows are reported, not fatal.
func (s *loanServiceImpl) ImportLoans(ctx context.Context, actor authz.Actor, r io.Reader) (*dto.ImportLoansResponse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, response.NewValidationError("Empty or unreadable CSV file", "")
	}
	if err := validateCSVHeader(header); err != nil {
		return nil, err
	}

	result := &dto.ImportLoansResponse{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		loanNumber := strings.TrimSpace(record[0])
		borrowerName := strings.TrimSpace(record[1])
		if loanNumber == "" || borrowerName == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: loan_number and borrower_name are required", line))
			continue
		}

		exists, err := s.loanRepo.ExistsByLoanNumber(ctx, loanNumber)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check loan number", err.Error())
		}
		if exists {
			result.Skipped++
			continue
		}

		amount := 0.0
		if raw := strings.TrimSpace(record[4]); raw != "" {
			amount, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid amount %q", line, raw))
				continue
			}
		}

		loan := &domain.Loan{
			LoanNumber:      loanNumber,
			BorrowerName:    borrowerName,
			BorrowerPhone:   strings.TrimSpace(record[2]),
			BorrowerEmail:   strings.TrimSpace(record[3]),
			Amount:          amount,
			Program:         strings.TrimSpace(record[5]),
			PropertyAddress: strings.TrimSpace(record[6]),
			Stage:           domain.StageIntake,
			LoanOfficerID:   actor.UserID,
		}
		if err := s.loanRepo.Create(ctx, loan); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Created++
		s.metrics.IncrementLoanCreated()
	}

	details, _ := json.Marshal(map[string]int{"created": result.Created, "skipped": result.Skipped})
	if err := s.auditRepo.Create(ctx, &domain.AuditLog{
		ActorID: actor.UserID,
		Action:  domain.AuditLoansImported,
		Details: details,
	}); err != nil {
		s.logger.Warn("failed to record import audit entry", zap.Error(err))
	}

	s.logger.Info("loan import finished",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func validateCSVHeader(header []string) error {
	if len(header) < len(csvHeader) {
		return response.NewValidationError("CSV header is missing columns",
			"expected: "+strings.Join(csvHeader, ","))
	}
	for i, want := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return response.NewValidationError("Unexpected CSV column",
				fmt.Sprintf("column %d: got %q, want %q", i+1, header[i], want))
		}
	}
	return nil
}
