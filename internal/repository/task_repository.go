package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

// RoleCount is one row of the open-task dashboard aggregate
type RoleCount struct {
	AssignedRole domain.Role `json:"assigned_role"`
	Count        int64       `json:"count"`
}

// TaskRepository defines the interface for task and task-template access
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	CreateBatch(ctx context.Context, tasks []*domain.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Task, error)
	FindQueueForRole(ctx context.Context, role domain.Role) ([]*domain.Task, error)
	FindQueueForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	ExistsForLoanStageTitle(ctx context.Context, loanID uuid.UUID, workflowState, title string) (bool, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountOpenByRole(ctx context.Context) ([]RoleCount, error)

	FindTemplatesByStage(ctx context.Context, stage domain.LoanStage) ([]*domain.TaskTemplate, error)
	CreateTemplate(ctx context.Context, template *domain.TaskTemplate) error
}

// taskRepositoryImpl is the GORM implementation of TaskRepository
type taskRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepositoryImpl{db: db}
}

// Create creates a new task
func (r *taskRepositoryImpl) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// CreateBatch bulk-inserts tasks (template expansion)
func (r *taskRepositoryImpl) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(tasks).Error
}

// FindByID finds a task by its ID
func (r *taskRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByLoan lists a loan's tasks, due-soonest first
func (r *taskRepositoryImpl) FindByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("due_date ASC NULLS LAST, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindQueueForRole lists open tasks assigned to a role
func (r *taskRepositoryImpl) FindQueueForRole(ctx context.Context, role domain.Role) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Where("assigned_role = ? AND status <> ?", role, domain.TaskStatusCompleted).
		Order("due_date ASC NULLS LAST, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindQueueForUser lists open tasks assigned to a specific user
func (r *taskRepositoryImpl) FindQueueForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Where("assigned_user_id = ? AND status <> ?", userID, domain.TaskStatusCompleted).
		Order("due_date ASC NULLS LAST, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ExistsForLoanStageTitle reports whether template expansion already produced
// this task for the loan. Keys retries of the same stage change idempotent.
func (r *taskRepositoryImpl) ExistsForLoanStageTitle(ctx context.Context, loanID uuid.UUID, workflowState, title string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("loan_id = ? AND workflow_state = ? AND title = ?", loanID, workflowState, title).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates a task
func (r *taskRepositoryImpl) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete soft deletes a task (explicit admin delete only)
func (r *taskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id).Error
}

// CountOpenByRole aggregates open task counts per assigned role
func (r *taskRepositoryImpl) CountOpenByRole(ctx context.Context) ([]RoleCount, error) {
	var counts []RoleCount
	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Select("assigned_role, count(*) as count").
		Where("assigned_role IS NOT NULL AND status <> ?", domain.TaskStatusCompleted).
		Group("assigned_role").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// FindTemplatesByStage lists templates the workflow engine expands for a stage
func (r *taskRepositoryImpl) FindTemplatesByStage(ctx context.Context, stage domain.LoanStage) ([]*domain.TaskTemplate, error) {
	var templates []*domain.TaskTemplate
	if err := r.db.WithContext(ctx).
		Where("stage = ?", stage).
		Order("created_at ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// CreateTemplate creates a task template
func (r *taskRepositoryImpl) CreateTemplate(ctx context.Context, template *domain.TaskTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}
