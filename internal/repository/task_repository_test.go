package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

func setupTaskTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	// Create tasks and task_templates tables for SQLite compatibility
	db.Exec(`CREATE TABLE tasks (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME,
		loan_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		priority TEXT NOT NULL DEFAULT 'NORMAL',
		kind TEXT,
		workflow_state TEXT,
		assigned_role TEXT,
		assigned_user_id TEXT,
		due_date DATETIME,
		completed_at DATETIME
	)`)
	db.Exec(`CREATE TABLE task_templates (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME,
		stage TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		assigned_role TEXT,
		kind TEXT,
		due_offset_days INTEGER NOT NULL DEFAULT 0
	)`)

	return db
}

func TestTaskRepository_ExistsForLoanStageTitle(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	loanID := uuid.New()
	task := &domain.Task{
		BaseModel:     domain.BaseModel{ID: uuid.New()},
		LoanID:        loanID,
		Title:         "Prepare disclosures",
		Status:        domain.TaskStatusPending,
		Priority:      domain.TaskPriorityNormal,
		WorkflowState: string(domain.StageDisclosuresPending),
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	exists, err := repo.ExistsForLoanStageTitle(ctx, loanID, string(domain.StageDisclosuresPending), "Prepare disclosures")
	if err != nil {
		t.Fatalf("ExistsForLoanStageTitle() error = %v", err)
	}
	if !exists {
		t.Error("expected existing task to be found")
	}

	// Same title under a different workflow state does not count
	exists, err = repo.ExistsForLoanStageTitle(ctx, loanID, string(domain.StageClearToClose), "Prepare disclosures")
	if err != nil {
		t.Fatalf("ExistsForLoanStageTitle() error = %v", err)
	}
	if exists {
		t.Error("expected no match for a different workflow state")
	}

	exists, err = repo.ExistsForLoanStageTitle(ctx, uuid.New(), string(domain.StageDisclosuresPending), "Prepare disclosures")
	if err != nil {
		t.Fatalf("ExistsForLoanStageTitle() error = %v", err)
	}
	if exists {
		t.Error("expected no match for a different loan")
	}
}

func TestTaskRepository_FindQueueForRole(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	role := domain.RoleDisclosureSpecialist
	now := time.Now()
	soon := now.Add(24 * time.Hour)
	later := now.Add(72 * time.Hour)

	openLater := &domain.Task{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		LoanID:       uuid.New(),
		Title:        "Collect signed package",
		Status:       domain.TaskStatusPending,
		Priority:     domain.TaskPriorityNormal,
		AssignedRole: &role,
		DueDate:      &later,
	}
	db.Create(openLater)

	openSoon := &domain.Task{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		LoanID:       uuid.New(),
		Title:        "Prepare disclosures",
		Status:       domain.TaskStatusInProgress,
		Priority:     domain.TaskPriorityHigh,
		AssignedRole: &role,
		DueDate:      &soon,
	}
	db.Create(openSoon)

	noDue := &domain.Task{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		LoanID:       uuid.New(),
		Title:        "Review file",
		Status:       domain.TaskStatusPending,
		Priority:     domain.TaskPriorityNormal,
		AssignedRole: &role,
	}
	db.Create(noDue)

	completed := &domain.Task{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		LoanID:       uuid.New(),
		Title:        "Done already",
		Status:       domain.TaskStatusCompleted,
		Priority:     domain.TaskPriorityNormal,
		AssignedRole: &role,
		CompletedAt:  &now,
	}
	db.Create(completed)

	otherRole := domain.RoleQC
	foreign := &domain.Task{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		LoanID:       uuid.New(),
		Title:        "QC review",
		Status:       domain.TaskStatusPending,
		Priority:     domain.TaskPriorityNormal,
		AssignedRole: &otherRole,
	}
	db.Create(foreign)

	queue, err := repo.FindQueueForRole(ctx, role)
	if err != nil {
		t.Fatalf("FindQueueForRole() error = %v", err)
	}
	if len(queue) != 3 {
		t.Fatalf("expected 3 open tasks, got %d", len(queue))
	}

	// Due-soonest first, undated work at the back
	wantOrder := []uuid.UUID{openSoon.ID, openLater.ID, noDue.ID}
	for i, task := range queue {
		if task.ID != wantOrder[i] {
			t.Errorf("position %d: got %q, want task %v", i, task.Title, wantOrder[i])
		}
	}
}

func TestTaskRepository_FindQueueForUser(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now()

	open := &domain.Task{
		BaseModel:      domain.BaseModel{ID: uuid.New()},
		LoanID:         uuid.New(),
		Title:          "Call borrower",
		Status:         domain.TaskStatusPending,
		Priority:       domain.TaskPriorityNormal,
		AssignedUserID: &userID,
	}
	db.Create(open)

	completed := &domain.Task{
		BaseModel:      domain.BaseModel{ID: uuid.New()},
		LoanID:         uuid.New(),
		Title:          "Order appraisal",
		Status:         domain.TaskStatusCompleted,
		Priority:       domain.TaskPriorityNormal,
		AssignedUserID: &userID,
		CompletedAt:    &now,
	}
	db.Create(completed)

	queue, err := repo.FindQueueForUser(ctx, userID)
	if err != nil {
		t.Fatalf("FindQueueForUser() error = %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("expected 1 open task, got %d", len(queue))
	}
	if queue[0].ID != open.ID {
		t.Errorf("got task %v, want %v", queue[0].ID, open.ID)
	}
}

func TestTaskRepository_CountOpenByRole(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	disclosure := domain.RoleDisclosureSpecialist
	qc := domain.RoleQC
	now := time.Now()

	for i := 0; i < 2; i++ {
		db.Create(&domain.Task{
			BaseModel:    domain.BaseModel{ID: uuid.New()},
			LoanID:       uuid.New(),
			Title:        "Disclosure work",
			Status:       domain.TaskStatusPending,
			Priority:     domain.TaskPriorityNormal,
			AssignedRole: &disclosure,
		})
	}
	db.Create(&domain.Task{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		LoanID:       uuid.New(),
		Title:        "QC review",
		Status:       domain.TaskStatusInProgress,
		Priority:     domain.TaskPriorityNormal,
		AssignedRole: &qc,
	})
	// Completed and unassigned tasks stay out of the aggregate
	db.Create(&domain.Task{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		LoanID:       uuid.New(),
		Title:        "Finished",
		Status:       domain.TaskStatusCompleted,
		Priority:     domain.TaskPriorityNormal,
		AssignedRole: &qc,
		CompletedAt:  &now,
	})
	db.Create(&domain.Task{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		LoanID:    uuid.New(),
		Title:     "Floating",
		Status:    domain.TaskStatusPending,
		Priority:  domain.TaskPriorityNormal,
	})

	counts, err := repo.CountOpenByRole(ctx)
	if err != nil {
		t.Fatalf("CountOpenByRole() error = %v", err)
	}

	got := make(map[domain.Role]int64)
	for _, c := range counts {
		got[c.AssignedRole] = c.Count
	}
	if got[disclosure] != 2 {
		t.Errorf("disclosure count = %d, want 2", got[disclosure])
	}
	if got[qc] != 1 {
		t.Errorf("qc count = %d, want 1", got[qc])
	}
	if len(got) != 2 {
		t.Errorf("expected 2 role buckets, got %d", len(got))
	}
}

func TestTaskRepository_FindTemplatesByStage(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	role := domain.RoleDisclosureSpecialist
	first := &domain.TaskTemplate{
		BaseModel:     domain.BaseModel{ID: uuid.New(), CreatedAt: time.Now().Add(-2 * time.Hour)},
		Stage:         domain.StageDisclosuresPending,
		Title:         "Prepare disclosures",
		AssignedRole:  &role,
		DueOffsetDays: 1,
	}
	db.Create(first)
	second := &domain.TaskTemplate{
		BaseModel:     domain.BaseModel{ID: uuid.New(), CreatedAt: time.Now().Add(-1 * time.Hour)},
		Stage:         domain.StageDisclosuresPending,
		Title:         "Collect signed package",
		AssignedRole:  &role,
		DueOffsetDays: 3,
	}
	db.Create(second)
	db.Create(&domain.TaskTemplate{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Stage:     domain.StageClearToClose,
		Title:     "Schedule closing",
	})

	templates, err := repo.FindTemplatesByStage(ctx, domain.StageDisclosuresPending)
	if err != nil {
		t.Fatalf("FindTemplatesByStage() error = %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if templates[0].ID != first.ID || templates[1].ID != second.ID {
		t.Errorf("templates out of creation order: %q, %q", templates[0].Title, templates[1].Title)
	}
}
