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

// defaultStages are created on first board access for an owner with no
// columns at all. Order follows slice position.
var defaultStages = []struct {
	Name  string
	Color string
}{
	{"New", "#6B7280"},
	{"Contacted", "#3B82F6"},
	{"Application", "#8B5CF6"},
	{"Pre-Approved", "#06B6D4"},
	{"In Processing", "#F59E0B"},
	{"Clear to Close", "#84CC16"},
	{"Funded", "#22C55E"},
}

// PipelineService manages per-officer Kanban boards: columns, ordering,
// loan placement and notes.
type PipelineService interface {
	GetBoard(ctx context.Context, actor authz.Actor, ownerID *uuid.UUID) (*dto.BoardResponse, error)
	CreateStage(ctx context.Context, actor authz.Actor, ownerID *uuid.UUID, req *dto.CreateStageRequest) (*dto.StageResponse, error)
	UpdateStage(ctx context.Context, actor authz.Actor, stageID uuid.UUID, req *dto.UpdateStageRequest) (*dto.StageResponse, error)
	ReorderStages(ctx context.Context, actor authz.Actor, ownerID *uuid.UUID, req *dto.ReorderStagesRequest) ([]dto.StageResponse, error)
	DeleteStage(ctx context.Context, actor authz.Actor, stageID uuid.UUID, fallbackID *uuid.UUID) error
	AssignLoanToStage(ctx context.Context, actor authz.Actor, loanID uuid.UUID, stageID *uuid.UUID) error
	AddNote(ctx context.Context, actor authz.Actor, loanID uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	GetNotes(ctx context.Context, actor authz.Actor, loanID uuid.UUID) ([]dto.NoteResponse, error)
}

// pipelineServiceImpl is the implementation of PipelineService
type pipelineServiceImpl struct {
	pipelineRepo repository.PipelineRepository
	loanRepo     repository.LoanRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	logger       *zap.Logger
}

// NewPipelineService creates a new instance of PipelineService
func NewPipelineService(
	pipelineRepo repository.PipelineRepository,
	loanRepo repository.LoanRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	logger *zap.Logger,
) PipelineService {
	return &pipelineServiceImpl{
		pipelineRepo: pipelineRepo,
		loanRepo:     loanRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

// resolveBoardOwner decides whose board an operation targets. Loan officers
// are hard-locked to their own board regardless of the requested id;
// admins and managers may target any officer, defaulting to the first
// active one.
func (s *pipelineServiceImpl) resolveBoardOwner(ctx context.Context, actor authz.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if !actor.CanManageAll() {
		return actor.UserID, nil
	}
	if requested != nil {
		return *requested, nil
	}
	officer, err := s.userRepo.FindFirstActiveByRole(ctx, domain.RoleLoanOfficer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, response.NewNotFoundError("No active loan officer found", "")
		}
		return uuid.Nil, response.NewAppError(response.ErrCodeInternal, "Failed to resolve board owner", err.Error())
	}
	return officer.ID, nil
}

// ensureDefaultStages bulk-creates the default columns when the owner has
// none. Idempotent: any existing column, default or not, disables it.
func (s *pipelineServiceImpl) ensureDefaultStages(ctx context.Context, ownerID uuid.UUID) error {
	count, err := s.pipelineRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	stages := make([]*domain.PipelineStage, 0, len(defaultStages))
	for i, d := range defaultStages {
		stages = append(stages, &domain.PipelineStage{
			UserID:    ownerID,
			Name:      d.Name,
			Order:     i,
			Color:     d.Color,
			IsDefault: true,
		})
	}
	return s.pipelineRepo.CreateBatch(ctx, stages)
}

// GetBoard returns the owner's full Kanban board, creating default columns
// on first access
func (s *pipelineServiceImpl) GetBoard(ctx context.Context, actor authz.Actor, ownerID *uuid.UUID) (*dto.BoardResponse, error) {
	owner, err := s.resolveBoardOwner(ctx, actor, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureDefaultStages(ctx, owner); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to initialize board", err.Error())
	}

	stages, err := s.pipelineRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load board", err.Error())
	}
	loans, err := s.loanRepo.FindByOfficer(ctx, owner)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load loans", err.Error())
	}

	byStage := make(map[uuid.UUID][]dto.LoanResponse)
	var unassigned []dto.LoanResponse
	for _, l := range loans {
		if l.PipelineStageID == nil {
			unassigned = append(unassigned, dto.ToLoanResponse(l))
			continue
		}
		byStage[*l.PipelineStageID] = append(byStage[*l.PipelineStageID], dto.ToLoanResponse(l))
	}

	columns := make([]dto.BoardColumnResponse, 0, len(stages))
	for _, st := range stages {
		cells := byStage[st.ID]
		if cells == nil {
			cells = []dto.LoanResponse{}
		}
		columns = append(columns, dto.BoardColumnResponse{
			Stage: dto.ToStageResponse(st),
			Loans: cells,
		})
	}
	if unassigned == nil {
		unassigned = []dto.LoanResponse{}
	}

	return &dto.BoardResponse{
		OwnerID:    owner,
		Columns:    columns,
		Unassigned: unassigned,
	}, nil
}

// CreateStage appends a new column at the end of the board
func (s *pipelineServiceImpl) CreateStage(ctx context.Context, actor authz.Actor, ownerID *uuid.UUID, req *dto.CreateStageRequest) (*dto.StageResponse, error) {
	owner, err := s.resolveBoardOwner(ctx, actor, ownerID)
	if err != nil {
		return nil, err
	}

	maxOrder, err := s.pipelineRepo.MaxOrder(ctx, owner)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to determine stage order", err.Error())
	}

	stage := &domain.PipelineStage{
		UserID: owner,
		Name:   req.Name,
		Order:  maxOrder + 1,
		Color:  req.Color,
	}
	if err := s.pipelineRepo.Create(ctx, stage); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create stage", err.Error())
	}

	resp := dto.ToStageResponse(stage)
	return &resp, nil
}

// UpdateStage renames or recolors a column
func (s *pipelineServiceImpl) UpdateStage(ctx context.Context, actor authz.Actor, stageID uuid.UUID, req *dto.UpdateStageRequest) (*dto.StageResponse, error) {
	stage, err := s.findOwnedStage(ctx, actor, stageID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		stage.Name = *req.Name
	}
	if req.Color != nil {
		stage.Color = *req.Color
	}
	if err := s.pipelineRepo.Update(ctx, stage); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update stage", err.Error())
	}

	resp := dto.ToStageResponse(stage)
	return &resp, nil
}

// ReorderStages rewrites the column order from the supplied full id list
func (s *pipelineServiceImpl) ReorderStages(ctx context.Context, actor authz.Actor, ownerID *uuid.UUID, req *dto.ReorderStagesRequest) ([]dto.StageResponse, error) {
	owner, err := s.resolveBoardOwner(ctx, actor, ownerID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(req.StageIDs))
	for _, id := range req.StageIDs {
		if seen[id] {
			return nil, response.NewValidationError("Duplicate stage id in reorder list", id.String())
		}
		seen[id] = true
	}

	if err := s.pipelineRepo.Reorder(ctx, owner, req.StageIDs); err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to reorder stages", err.Error())
	}

	stages, err := s.pipelineRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load board", err.Error())
	}
	return dto.ToStageResponses(stages), nil
}

// DeleteStage removes a column, reassigning its loans to the fallback column
// (or clearing their placement) in the same transaction
func (s *pipelineServiceImpl) DeleteStage(ctx context.Context, actor authz.Actor, stageID uuid.UUID, fallbackID *uuid.UUID) error {
	stage, err := s.findOwnedStage(ctx, actor, stageID)
	if err != nil {
		return err
	}

	if fallbackID != nil {
		fallback, err := s.pipelineRepo.FindByID(ctx, *fallbackID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFoundError("Fallback stage not found", "")
			}
			return response.NewAppError(response.ErrCodeInternal, "Failed to load fallback stage", err.Error())
		}
		if fallback.UserID != stage.UserID {
			return response.NewValidationError("Fallback stage belongs to a different board", "")
		}
		if fallback.ID == stage.ID {
			return response.NewValidationError("Fallback stage cannot be the deleted stage", "")
		}
	}

	if err := s.pipelineRepo.DeleteWithReassign(ctx, stageID, fallbackID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete stage", err.Error())
	}

	details, _ := json.Marshal(map[string]interface{}{
		"stage_id":   stageID,
		"stage_name": stage.Name,
	})
	if err := s.auditRepo.Create(ctx, &domain.AuditLog{
		ActorID: actor.UserID,
		Action:  domain.AuditStageDeleted,
		Details: details,
	}); err != nil {
		s.logger.Warn("failed to record stage deletion audit entry", zap.Error(err))
	}
	return nil
}

// AssignLoanToStage places a loan into a Kanban column, or clears the
// placement when stageID is nil
func (s *pipelineServiceImpl) AssignLoanToStage(ctx context.Context, actor authz.Actor, loanID uuid.UUID, stageID *uuid.UUID) error {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Loan not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to load loan", err.Error())
	}
	if !authz.CanAccessLoan(actor, loan) {
		return authz.ErrNotAuthorized()
	}

	if stageID != nil {
		stage, err := s.pipelineRepo.FindByID(ctx, *stageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFoundError("Pipeline stage not found", "")
			}
			return response.NewAppError(response.ErrCodeInternal, "Failed to load stage", err.Error())
		}
		if stage.UserID != loan.LoanOfficerID {
			return response.NewValidationError("Stage belongs to a different officer's board", "")
		}
	}

	if err := s.loanRepo.SetPipelineStage(ctx, loanID, stageID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to assign loan to stage", err.Error())
	}
	return nil
}

// AddNote appends a free-text note to a loan
func (s *pipelineServiceImpl) AddNote(ctx context.Context, actor authz.Actor, loanID uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Loan not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load loan", err.Error())
	}
	if !authz.Allowed(actor, authz.ResourceNote, authz.Input{LoanOwnerID: loan.LoanOfficerID}) {
		return nil, authz.ErrNotAuthorized()
	}

	note := &domain.PipelineNote{
		LoanID:   loanID,
		AuthorID: actor.UserID,
		Body:     req.Body,
	}
	if err := s.pipelineRepo.CreateNote(ctx, note); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create note", err.Error())
	}

	resp := dto.ToNoteResponse(note)
	return &resp, nil
}

// GetNotes lists a loan's notes, newest first
func (s *pipelineServiceImpl) GetNotes(ctx context.Context, actor authz.Actor, loanID uuid.UUID) ([]dto.NoteResponse, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Loan not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load loan", err.Error())
	}
	if !authz.Allowed(actor, authz.ResourceNote, authz.Input{LoanOwnerID: loan.LoanOfficerID}) {
		return nil, authz.ErrNotAuthorized()
	}

	notes, err := s.pipelineRepo.FindNotesByLoan(ctx, loanID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load notes", err.Error())
	}

	out := make([]dto.NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, dto.ToNoteResponse(n))
	}
	return out, nil
}

// findOwnedStage loads a stage and checks the actor may manage its board
func (s *pipelineServiceImpl) findOwnedStage(ctx context.Context, actor authz.Actor, stageID uuid.UUID) (*domain.PipelineStage, error) {
	stage, err := s.pipelineRepo.FindByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Pipeline stage not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load stage", err.Error())
	}
	if !actor.CanManageAll() && stage.UserID != actor.UserID {
		return nil, authz.ErrNotAuthorized()
	}
	return stage, nil
}
