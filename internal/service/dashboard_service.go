package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loan-portal-api/internal/authz"
	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/repository"
	"loan-portal-api/internal/response"
)

// DashboardService composes the role-scoped landing views and the admin
// audit query.
type DashboardService interface {
	GetDashboard(ctx context.Context, actor authz.Actor) (*dto.DashboardResponse, error)
	GetAuditLog(ctx context.Context, actor authz.Actor, loanID *uuid.UUID, limit int) ([]dto.AuditLogResponse, error)
}

// dashboardServiceImpl is the implementation of DashboardService
type dashboardServiceImpl struct {
	loanRepo  repository.LoanRepository
	taskRepo  repository.TaskRepository
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

// NewDashboardService creates a new instance of DashboardService
func NewDashboardService(
	loanRepo repository.LoanRepository,
	taskRepo repository.TaskRepository,
	auditRepo repository.AuditRepository,
	logger *zap.Logger,
) DashboardService {
	return &dashboardServiceImpl{
		loanRepo:  loanRepo,
		taskRepo:  taskRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// GetDashboard returns loan counts per stage scoped to the caller, the open
// task breakdown per role for managers, and the caller's own open queue
func (s *dashboardServiceImpl) GetDashboard(ctx context.Context, actor authz.Actor) (*dto.DashboardResponse, error) {
	var officerFilter *uuid.UUID
	if !actor.CanManageAll() {
		id := actor.UserID
		officerFilter = &id
	}

	stageCounts, err := s.loanRepo.CountByStage(ctx, officerFilter)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to count loans", err.Error())
	}

	resp := &dto.DashboardResponse{
		LoansByStage: make([]dto.StageCountResponse, 0, len(stageCounts)),
	}
	for _, sc := range stageCounts {
		resp.LoansByStage = append(resp.LoansByStage, dto.StageCountResponse{
			Stage: sc.Stage,
			Count: sc.Count,
		})
	}

	if actor.CanManageAll() {
		roleCounts, err := s.taskRepo.CountOpenByRole(ctx)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to count open tasks", err.Error())
		}
		resp.OpenTasksByRole = make([]dto.RoleCountResponse, 0, len(roleCounts))
		for _, rc := range roleCounts {
			resp.OpenTasksByRole = append(resp.OpenTasksByRole, dto.RoleCountResponse{
				Role:  rc.AssignedRole,
				Count: rc.Count,
			})
		}
	}

	roleTasks, err := s.taskRepo.FindQueueForRole(ctx, actor.Role)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load task queue", err.Error())
	}
	userTasks, err := s.taskRepo.FindQueueForUser(ctx, actor.UserID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load task queue", err.Error())
	}

	seen := make(map[uuid.UUID]bool, len(roleTasks))
	merged := make([]*domain.Task, 0, len(roleTasks)+len(userTasks))
	for _, t := range roleTasks {
		seen[t.ID] = true
		merged = append(merged, t)
	}
	for _, t := range userTasks {
		if !seen[t.ID] {
			merged = append(merged, t)
		}
	}
	sortTasksByDueDate(merged)
	resp.MyOpenTasks = dto.ToTaskResponses(merged)

	return resp, nil
}

// GetAuditLog returns recent audit entries, optionally scoped to one loan.
// Admin only.
func (s *dashboardServiceImpl) GetAuditLog(ctx context.Context, actor authz.Actor, loanID *uuid.UUID, limit int) ([]dto.AuditLogResponse, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, authz.ErrNotAuthorized()
	}

	var (
		entries []*domain.AuditLog
		err     error
	)
	if loanID != nil {
		entries, err = s.auditRepo.FindByLoan(ctx, *loanID)
	} else {
		entries, err = s.auditRepo.FindRecent(ctx, limit)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.AuditLogResponse{}, nil
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load audit log", err.Error())
	}

	out := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		var details interface{}
		if len(e.Details) > 0 {
			if err := json.Unmarshal(e.Details, &details); err != nil {
				details = string(e.Details)
			}
		}
		out = append(out, dto.AuditLogResponse{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Action:    e.Action,
			LoanID:    e.LoanID,
			Details:   details,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}
