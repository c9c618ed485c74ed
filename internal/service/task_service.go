package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loan-portal-api/internal/authz"
	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/repository"
	"loan-portal-api/internal/response"
)

// TaskService manages the work queue: manual task creation, status
// transitions and role/user queues.
type TaskService interface {
	CreateTask(ctx context.Context, actor authz.Actor, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	GetTask(ctx context.Context, actor authz.Actor, taskID uuid.UUID) (*dto.TaskResponse, error)
	GetTasksByLoan(ctx context.Context, actor authz.Actor, loanID uuid.UUID) ([]dto.TaskResponse, error)
	GetMyQueue(ctx context.Context, actor authz.Actor) ([]dto.TaskResponse, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, taskID uuid.UUID, newStatus domain.TaskStatus) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, actor authz.Actor, taskID uuid.UUID) error
}

// taskServiceImpl is the implementation of TaskService
type taskServiceImpl struct {
	taskRepo  repository.TaskRepository
	loanRepo  repository.LoanRepository
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

// NewTaskService creates a new instance of TaskService
func NewTaskService(taskRepo repository.TaskRepository, loanRepo repository.LoanRepository, auditRepo repository.AuditRepository, logger *zap.Logger) TaskService {
	return &taskServiceImpl{
		taskRepo:  taskRepo,
		loanRepo:  loanRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// CreateTask adds a manual task to a loan the actor can access
func (s *taskServiceImpl) CreateTask(ctx context.Context, actor authz.Actor, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	loan, err := s.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Loan not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load loan", err.Error())
	}
	if !authz.CanAccessLoan(actor, loan) {
		return nil, authz.ErrNotAuthorized()
	}

	if req.AssignedRole != nil && !domain.IsValidRole(*req.AssignedRole) {
		return nil, response.NewValidationError("Invalid assigned role", string(*req.AssignedRole))
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.TaskPriorityNormal
	}

	task := &domain.Task{
		LoanID:         req.LoanID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.TaskStatusPending,
		Priority:       priority,
		Kind:           req.Kind,
		AssignedRole:   req.AssignedRole,
		AssignedUserID: req.AssignedUserID,
		DueDate:        req.DueDate,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create task", err.Error())
	}

	resp := dto.ToTaskResponse(task)
	return &resp, nil
}

// GetTask returns one task after the transitive access check
func (s *taskServiceImpl) GetTask(ctx context.Context, actor authz.Actor, taskID uuid.UUID) (*dto.TaskResponse, error) {
	task, loan, err := s.findTaskWithLoan(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(actor, task, loan.LoanOfficerID) {
		return nil, authz.ErrNotAuthorized()
	}

	resp := dto.ToTaskResponse(task)
	return &resp, nil
}

// GetTasksByLoan lists a loan's tasks
func (s *taskServiceImpl) GetTasksByLoan(ctx context.Context, actor authz.Actor, loanID uuid.UUID) ([]dto.TaskResponse, error) {
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

	tasks, err := s.taskRepo.FindByLoan(ctx, loanID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load tasks", err.Error())
	}
	return dto.ToTaskResponses(tasks), nil
}

// GetMyQueue returns the actor's open work: tasks assigned to their role
// merged with tasks assigned to them directly, due-date ascending
func (s *taskServiceImpl) GetMyQueue(ctx context.Context, actor authz.Actor) ([]dto.TaskResponse, error) {
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

	return dto.ToTaskResponses(merged), nil
}

// UpdateStatus moves a task through PENDING → IN_PROGRESS → COMPLETED.
// BLOCKED is reachable from any non-terminal state and returns to
// IN_PROGRESS. Entering COMPLETED stamps completedAt; leaving it clears it.
func (s *taskServiceImpl) UpdateStatus(ctx context.Context, actor authz.Actor, taskID uuid.UUID, newStatus domain.TaskStatus) (*dto.TaskResponse, error) {
	if !domain.IsValidTaskStatus(newStatus) {
		return nil, response.NewValidationError("Invalid task status", string(newStatus))
	}

	task, loan, err := s.findTaskWithLoan(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(actor, task, loan.LoanOfficerID) {
		return nil, authz.ErrNotAuthorized()
	}

	if !isAllowedTransition(task.Status, newStatus) {
		return nil, response.NewValidationError("Invalid status transition",
			string(task.Status)+" -> "+string(newStatus))
	}

	prev := task.Status
	task.Status = newStatus
	switch {
	case newStatus == domain.TaskStatusCompleted:
		now := time.Now().UTC()
		task.CompletedAt = &now
	case prev == domain.TaskStatusCompleted:
		task.CompletedAt = nil
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update task", err.Error())
	}

	resp := dto.ToTaskResponse(task)
	return &resp, nil
}

// DeleteTask hard-deletes a task. Tasks otherwise persist for the loan's
// history, so this is admin only and leaves an audit entry.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor authz.Actor, taskID uuid.UUID) error {
	if actor.Role != domain.RoleAdmin {
		return authz.ErrNotAuthorized()
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Task not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to load task", err.Error())
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete task", err.Error())
	}

	details, _ := json.Marshal(map[string]string{
		"task_id": task.ID.String(),
		"loan_id": task.LoanID.String(),
		"title":   task.Title,
	})
	if err := s.auditRepo.Create(ctx, &domain.AuditLog{
		ActorID: actor.UserID,
		Action:  domain.AuditTaskDeleted,
		Details: details,
	}); err != nil {
		s.logger.Warn("failed to record task delete audit entry", zap.Error(err))
	}
	return nil
}

// isAllowedTransition encodes the status lifecycle
func isAllowedTransition(from, to domain.TaskStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case domain.TaskStatusPending:
		return to == domain.TaskStatusInProgress || to == domain.TaskStatusBlocked
	case domain.TaskStatusInProgress:
		return to == domain.TaskStatusCompleted || to == domain.TaskStatusBlocked
	case domain.TaskStatusBlocked:
		return to == domain.TaskStatusInProgress
	case domain.TaskStatusCompleted:
		return to == domain.TaskStatusInProgress
	default:
		return false
	}
}

// sortTasksByDueDate orders open work due-date ascending, nil due dates last
func sortTasksByDueDate(tasks []*domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return taskDueBefore(tasks[i], tasks[j])
	})
}

func taskDueBefore(a, b *domain.Task) bool {
	if a.DueDate == nil {
		return false
	}
	if b.DueDate == nil {
		return true
	}
	return a.DueDate.Before(*b.DueDate)
}

// findTaskWithLoan loads a task and its parent loan for transitive checks
func (s *taskServiceImpl) findTaskWithLoan(ctx context.Context, taskID uuid.UUID) (*domain.Task, *domain.Loan, error) {
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
