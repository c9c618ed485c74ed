package authz

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/response"
)

func TestCanAccessLoan(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()
	loan := &domain.Loan{LoanOfficerID: ownerID}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"admin always", Actor{UserID: otherID, Role: domain.RoleAdmin}, true},
		{"manager always", Actor{UserID: otherID, Role: domain.RoleManager}, true},
		{"owning officer", Actor{UserID: ownerID, Role: domain.RoleLoanOfficer}, true},
		{"other officer denied", Actor{UserID: otherID, Role: domain.RoleLoanOfficer}, false},
		{"unassigned va denied", Actor{UserID: otherID, Role: domain.RoleVATitle}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessLoan(tt.actor, loan); got != tt.want {
				t.Errorf("CanAccessLoan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAccessTask(t *testing.T) {
	ownerID := uuid.New()
	assigneeID := uuid.New()
	strangerID := uuid.New()
	qcRole := domain.RoleQC

	tests := []struct {
		name  string
		actor Actor
		task  *domain.Task
		want  bool
	}{
		{
			name:  "assigned role grants access without user assignment",
			actor: Actor{UserID: strangerID, Role: domain.RoleQC},
			task:  &domain.Task{AssignedRole: &qcRole},
			want:  true,
		},
		{
			name:  "assigned user grants access regardless of role",
			actor: Actor{UserID: assigneeID, Role: domain.RoleProcessorJr},
			task:  &domain.Task{AssignedUserID: &assigneeID},
			want:  true,
		},
		{
			name:  "loan owner grants access transitively",
			actor: Actor{UserID: ownerID, Role: domain.RoleLoanOfficer},
			task:  &domain.Task{},
			want:  true,
		},
		{
			name:  "no relation is denied",
			actor: Actor{UserID: strangerID, Role: domain.RoleProcessorSr},
			task:  &domain.Task{AssignedRole: &qcRole},
			want:  false,
		},
		{
			name:  "manager bypass",
			actor: Actor{UserID: strangerID, Role: domain.RoleManager},
			task:  &domain.Task{},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessTask(tt.actor, tt.task, ownerID); got != tt.want {
				t.Errorf("CanAccessTask() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckAttachmentPurpose(t *testing.T) {
	vaKind := domain.TaskKindVATitle
	qcKind := domain.TaskKindSubmitQC

	// VA-kind task rejects non-PROOF purposes
	err := CheckAttachmentPurpose(&domain.Task{Kind: &vaKind}, domain.PurposeOther)
	if err == nil {
		t.Fatal("expected error for OTHER purpose on VA task")
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.Code != response.ErrCodeInvalidPurpose {
		t.Errorf("expected %s, got %v", response.ErrCodeInvalidPurpose, err)
	}

	// PROOF is accepted on VA tasks
	if err := CheckAttachmentPurpose(&domain.Task{Kind: &vaKind}, domain.PurposeProof); err != nil {
		t.Errorf("unexpected error for PROOF purpose: %v", err)
	}

	// Non-VA kinds accept any purpose
	if err := CheckAttachmentPurpose(&domain.Task{Kind: &qcKind}, domain.PurposeOther); err != nil {
		t.Errorf("unexpected error for non-VA kind: %v", err)
	}

	// Tasks without a kind accept any purpose
	if err := CheckAttachmentPurpose(&domain.Task{}, domain.PurposeOther); err != nil {
		t.Errorf("unexpected error for kindless task: %v", err)
	}
}

func TestCanManageAll(t *testing.T) {
	for _, role := range domain.AllRoles {
		actor := Actor{UserID: uuid.New(), Role: role}
		want := role == domain.RoleAdmin || role == domain.RoleManager
		if got := actor.CanManageAll(); got != want {
			t.Errorf("CanManageAll(%s) = %v, want %v", role, got, want)
		}
	}
}
