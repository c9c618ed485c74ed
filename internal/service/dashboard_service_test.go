package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loan-portal-api/internal/authz"
	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/repository"
	"loan-portal-api/internal/response"
)

func TestDashboardService_GetDashboard(t *testing.T) {
	officerID := uuid.New()

	t.Run("Officer: 자기 Loan만 집계, 역할별 Task 요약 없음", func(t *testing.T) {
		var filtered *uuid.UUID
		mockLoanRepo := &MockLoanRepository{
			CountByStageFunc: func(ctx context.Context, officerFilter *uuid.UUID) ([]repository.StageCount, error) {
				filtered = officerFilter
				return []repository.StageCount{
					{Stage: domain.StageIntake, Count: 4},
					{Stage: domain.StageClosing, Count: 1},
				}, nil
			},
		}
		roleQueried := false
		mockTaskRepo := &MockTaskRepository{
			CountOpenByRoleFunc: func(ctx context.Context) ([]repository.RoleCount, error) {
				roleQueried = true
				return nil, nil
			},
		}

		service := NewDashboardService(mockLoanRepo, mockTaskRepo, &MockAuditRepository{}, zap.NewNop())

		officer := authz.Actor{UserID: officerID, Role: domain.RoleLoanOfficer}
		result, err := service.GetDashboard(context.Background(), officer)
		if err != nil {
			t.Fatalf("GetDashboard() unexpected error = %v", err)
		}
		if filtered == nil || *filtered != officerID {
			t.Errorf("stage count filter = %v, want officer id", filtered)
		}
		if len(result.LoansByStage) != 2 {
			t.Errorf("loans by stage = %d buckets, want 2", len(result.LoansByStage))
		}
		if roleQueried {
			t.Error("per-role task summary computed for a non-manager")
		}
		if result.OpenTasksByRole != nil {
			t.Errorf("open tasks by role = %v, want absent", result.OpenTasksByRole)
		}
	})

	t.Run("Manager: 전체 Loan 집계와 역할별 Task 요약", func(t *testing.T) {
		var filtered *uuid.UUID
		mockLoanRepo := &MockLoanRepository{
			CountByStageFunc: func(ctx context.Context, officerFilter *uuid.UUID) ([]repository.StageCount, error) {
				filtered = officerFilter
				return nil, nil
			},
		}
		mockTaskRepo := &MockTaskRepository{
			CountOpenByRoleFunc: func(ctx context.Context) ([]repository.RoleCount, error) {
				return []repository.RoleCount{
					{AssignedRole: domain.RoleDisclosureSpecialist, Count: 3},
					{AssignedRole: domain.RoleQC, Count: 1},
				}, nil
			},
		}

		service := NewDashboardService(mockLoanRepo, mockTaskRepo, &MockAuditRepository{}, zap.NewNop())

		manager := authz.Actor{UserID: uuid.New(), Role: domain.RoleManager}
		result, err := service.GetDashboard(context.Background(), manager)
		if err != nil {
			t.Fatalf("GetDashboard() unexpected error = %v", err)
		}
		if filtered != nil {
			t.Errorf("stage count filter = %v, want nil for manager", filtered)
		}
		if len(result.OpenTasksByRole) != 2 {
			t.Fatalf("open tasks by role = %d buckets, want 2", len(result.OpenTasksByRole))
		}
		if result.OpenTasksByRole[0].Role != domain.RoleDisclosureSpecialist || result.OpenTasksByRole[0].Count != 3 {
			t.Errorf("bucket 0 = %s/%d, want DISCLOSURE_SPECIALIST/3",
				result.OpenTasksByRole[0].Role, result.OpenTasksByRole[0].Count)
		}
		if result.OpenTasksByRole[1].Role != domain.RoleQC || result.OpenTasksByRole[1].Count != 1 {
			t.Errorf("bucket 1 = %s/%d, want QC/1",
				result.OpenTasksByRole[1].Role, result.OpenTasksByRole[1].Count)
		}
	})
}

func TestDashboardService_GetAuditLog(t *testing.T) {
	admin := authz.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("성공: 최근 항목 조회", func(t *testing.T) {
		mockAuditRepo := &MockAuditRepository{
			FindRecentFunc: func(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
				return []*domain.AuditLog{
					{
						BaseModel: domain.BaseModel{ID: uuid.New()},
						ActorID:   uuid.New(),
						Action:    domain.AuditStageChanged,
						Details:   []byte(`{"from":"INTAKE","to":"DISCLOSURES_PENDING"}`),
					},
				}, nil
			},
		}

		service := NewDashboardService(&MockLoanRepository{}, &MockTaskRepository{}, mockAuditRepo, zap.NewNop())

		result, err := service.GetAuditLog(context.Background(), admin, nil, 50)
		if err != nil {
			t.Fatalf("GetAuditLog() unexpected error = %v", err)
		}
		if len(result) != 1 {
			t.Fatalf("entries = %d, want 1", len(result))
		}
		details, ok := result[0].Details.(map[string]interface{})
		if !ok {
			t.Fatalf("details = %T, want decoded object", result[0].Details)
		}
		if details["from"] != "INTAKE" {
			t.Errorf("details from = %v", details["from"])
		}
	})

	t.Run("성공: Loan 범위 조회", func(t *testing.T) {
		loanID := uuid.New()
		var queriedLoan uuid.UUID
		mockAuditRepo := &MockAuditRepository{
			FindByLoanFunc: func(ctx context.Context, id uuid.UUID) ([]*domain.AuditLog, error) {
				queriedLoan = id
				return nil, nil
			},
		}

		service := NewDashboardService(&MockLoanRepository{}, &MockTaskRepository{}, mockAuditRepo, zap.NewNop())

		if _, err := service.GetAuditLog(context.Background(), admin, &loanID, 50); err != nil {
			t.Fatalf("GetAuditLog() unexpected error = %v", err)
		}
		if queriedLoan != loanID {
			t.Errorf("queried loan = %v, want %v", queriedLoan, loanID)
		}
	})

	t.Run("실패: Admin이 아닌 사용자", func(t *testing.T) {
		service := NewDashboardService(&MockLoanRepository{}, &MockTaskRepository{}, &MockAuditRepository{}, zap.NewNop())

		manager := authz.Actor{UserID: uuid.New(), Role: domain.RoleManager}
		_, err := service.GetAuditLog(context.Background(), manager, nil, 50)
		if appErr, ok := err.(*response.AppError); !ok || appErr.Code != response.ErrCodeForbidden {
			t.Errorf("GetAuditLog() error = %v, want FORBIDDEN", err)
		}
	})

	t.Run("에러 전파: 조회 실패", func(t *testing.T) {
		mockAuditRepo := &MockAuditRepository{
			FindRecentFunc: func(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
				return nil, gorm.ErrInvalidDB
			},
		}

		service := NewDashboardService(&MockLoanRepository{}, &MockTaskRepository{}, mockAuditRepo, zap.NewNop())

		_, err := service.GetAuditLog(context.Background(), admin, nil, 50)
		if appErr, ok := err.(*response.AppError); !ok || appErr.Code != response.ErrCodeInternal {
			t.Errorf("GetAuditLog() error = %v, want INTERNAL_ERROR", err)
		}
	})
}
