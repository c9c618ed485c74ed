// Package authz holds the authorization policy in one place. Every
// data-reading and data-mutating operation applies exactly one check from
// this package before touching the store; a missing grant is an explicit
// denial, never a silent empty result.
package authz

import (
	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/response"
)

// Actor is the authenticated identity a check runs against. It is always
// derived from the real session; a client-declared "view-as" role is never
// consulted here.
type Actor struct {
	UserID uuid.UUID
	Role   domain.Role
}

// Relation names how an actor may relate to a resource
type Relation string

const (
	RelManageAll    Relation = "MANAGE_ALL"    // ADMIN/MANAGER bypass
	RelLoanOwner    Relation = "LOAN_OWNER"    // loan.LoanOfficerID == actor
	RelAssignedRole Relation = "ASSIGNED_ROLE" // task.AssignedRole == actor role
	RelAssignedUser Relation = "ASSIGNED_USER" // task.AssignedUserID == actor
)

// Resource names the record types the policy gates
type Resource string

const (
	ResourceLoan           Resource = "LOAN"
	ResourceTask           Resource = "TASK"
	ResourceAttachment     Resource = "ATTACHMENT"
	ResourceNote           Resource = "NOTE"
	ResourceClientDocument Resource = "CLIENT_DOCUMENT"
)

// grants is the capability table: any one satisfied relation grants access.
// Tasks and their attachments honor assignment relations; everything else is
// owner-or-manager only.
var grants = map[Resource][]Relation{
	ResourceLoan:           {RelManageAll, RelLoanOwner},
	ResourceTask:           {RelManageAll, RelLoanOwner, RelAssignedRole, RelAssignedUser},
	ResourceAttachment:     {RelManageAll, RelLoanOwner, RelAssignedRole, RelAssignedUser},
	ResourceNote:           {RelManageAll, RelLoanOwner},
	ResourceClientDocument: {RelManageAll, RelLoanOwner},
}

// CanManageAll reports whether the actor bypasses ownership checks entirely
func (a Actor) CanManageAll() bool {
	return a.Role == domain.RoleAdmin || a.Role == domain.RoleManager
}

// Input carries the facts a check evaluates. Task is nil for loan-level
// resources.
type Input struct {
	LoanOwnerID uuid.UUID
	Task        *domain.Task
}

// Allowed evaluates the capability table for one actor, resource, and input
func Allowed(actor Actor, resource Resource, in Input) bool {
	relations, ok := grants[resource]
	if !ok {
		return false
	}
	for _, rel := range relations {
		if holds(actor, rel, in) {
			return true
		}
	}
	return false
}

func holds(actor Actor, rel Relation, in Input) bool {
	switch rel {
	case RelManageAll:
		return actor.CanManageAll()
	case RelLoanOwner:
		return in.LoanOwnerID == actor.UserID
	case RelAssignedRole:
		return in.Task != nil && in.Task.AssignedRole != nil && *in.Task.AssignedRole == actor.Role
	case RelAssignedUser:
		return in.Task != nil && in.Task.AssignedUserID != nil && *in.Task.AssignedUserID == actor.UserID
	default:
		return false
	}
}

// CanAccessLoan checks loan-level access
func CanAccessLoan(actor Actor, loan *domain.Loan) bool {
	return Allowed(actor, ResourceLoan, Input{LoanOwnerID: loan.LoanOfficerID})
}

// CanAccessTask checks task-level access. loanOwnerID is the owner of the
// task's parent loan, propagated transitively.
func CanAccessTask(actor Actor, task *domain.Task, loanOwnerID uuid.UUID) bool {
	return Allowed(actor, ResourceTask, Input{LoanOwnerID: loanOwnerID, Task: task})
}

// CanAccessAttachment checks attachment access via the parent task
func CanAccessAttachment(actor Actor, task *domain.Task, loanOwnerID uuid.UUID) bool {
	return Allowed(actor, ResourceAttachment, Input{LoanOwnerID: loanOwnerID, Task: task})
}

// CheckAttachmentPurpose enforces the VA-kind restriction: tasks of a VA kind
// only accept PROOF attachments, regardless of role.
func CheckAttachmentPurpose(task *domain.Task, purpose domain.AttachmentPurpose) error {
	if task.Kind != nil && domain.IsVAKind(*task.Kind) && purpose != domain.PurposeProof {
		return response.NewAppError(response.ErrCodeInvalidPurpose,
			"VA tasks only accept attachments with purpose PROOF", string(*task.Kind))
	}
	return nil
}

// ErrNotAuthorized is the uniform denial returned when no relation holds
func ErrNotAuthorized() error {
	return response.NewForbiddenError("Not authorized", "")
}
