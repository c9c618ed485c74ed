package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

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

// WorkflowService drives coarse stage transitions: stage update, audit entry
// and task-template expansion happen in one transaction.
type WorkflowService interface {
	ChangeLoanStage(ctx context.Context, actor authz.Actor, loanID uuid.UUID, newStage domain.LoanStage) (*dto.LoanResponse, error)
}

// workflowServiceImpl is the implementation of WorkflowService
type workflowServiceImpl struct {
	loanRepo repository.LoanRepository
	taskRepo repository.TaskRepository
	uow      repository.UnitOfWork
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewWorkflowService creates a new instance of WorkflowService
func NewWorkflowService(
	loanRepo repository.LoanRepository,
	taskRepo repository.TaskRepository,
	uow repository.UnitOfWork,
	m *metrics.Metrics,
	logger *zap.Logger,
) WorkflowService {
	return &workflowServiceImpl{
		loanRepo: loanRepo,
		taskRepo: taskRepo,
		uow:      uow,
		metrics:  m,
		logger:   logger,
	}
}

// stageChangeDetails is the audit payload for a STAGE_CHANGED entry
type stageChangeDetails struct {
	From           domain.LoanStage `json:"from"`
	To             domain.LoanStage `json:"to"`
	TasksGenerated int              `json:"tasks_generated"`
}

// ChangeLoanStage moves a loan to newStage. Any transition is accepted; no
// forward-only ordering is enforced. The stage write, the audit entry and the
// template expansion commit or roll back together, and expansion skips
// templates whose task already exists so a retried call cannot duplicate work.
func (s *workflowServiceImpl) ChangeLoanStage(ctx context.Context, actor authz.Actor, loanID uuid.UUID, newStage domain.LoanStage) (*dto.LoanResponse, error) {
	if !domain.IsValidLoanStage(newStage) {
		return nil, response.NewValidationError("Invalid loan stage", string(newStage))
	}

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

	oldStage := loan.Stage
	now := time.Now().UTC()

	templates, err := s.taskRepo.FindTemplatesByStage(ctx, newStage)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load task templates", err.Error())
	}

	generated := 0
	err = s.uow.WithinTx(ctx, func(r repository.Repos) error {
		if err := r.Loans.UpdateStage(ctx, loanID, newStage); err != nil {
			return err
		}

		var newTasks []*domain.Task
		for _, tpl := range templates {
			exists, err := r.Tasks.ExistsForLoanStageTitle(ctx, loanID, string(newStage), tpl.Title)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			due := now.AddDate(0, 0, tpl.DueOffsetDays)
			newTasks = append(newTasks, &domain.Task{
				LoanID:        loanID,
				Title:         tpl.Title,
				Description:   tpl.Description,
				Status:        domain.TaskStatusPending,
				Priority:      domain.TaskPriorityNormal,
				Kind:          tpl.Kind,
				WorkflowState: string(newStage),
				AssignedRole:  tpl.AssignedRole,
				DueDate:       &due,
			})
		}
		if len(newTasks) > 0 {
			if err := r.Tasks.CreateBatch(ctx, newTasks); err != nil {
				return err
			}
		}
		generated = len(newTasks)

		details, err := json.Marshal(stageChangeDetails{
			From:           oldStage,
			To:             newStage,
			TasksGenerated: generated,
		})
		if err != nil {
			return err
		}
		return r.Audit.Create(ctx, &domain.AuditLog{
			ActorID: actor.UserID,
			Action:  domain.AuditStageChanged,
			LoanID:  &loanID,
			Details: details,
		})
	})
	if err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to change loan stage", err.Error())
	}

	s.metrics.IncrementStageChanged()
	s.metrics.AddTasksGenerated(generated)
	s.logger.Info("loan stage changed",
		zap.String("loan_id", loanID.String()),
		zap.String("from", string(oldStage)),
		zap.String("to", string(newStage)),
		zap.Int("tasks_generated", generated))

	loan.Stage = newStage
	resp := dto.ToLoanResponse(loan)
	return &resp, nil
}
