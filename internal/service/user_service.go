package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"loan-portal-api/internal/authz"
	"loan-portal-api/internal/client"
	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/dto"
	"loan-portal-api/internal/repository"
	"loan-portal-api/internal/response"
)

const (
	inviteTTL       = 7 * 24 * time.Hour
	resetTTL        = 1 * time.Hour
	sessionTokenTTL = 24 * time.Hour
)

// UserService manages accounts: login, admin creation, invites, password
// reset and deactivation. Accounts are never hard-deleted.
type UserService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	CreateUser(ctx context.Context, actor authz.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, actor authz.Actor, includeInactive bool) ([]dto.UserResponse, error)
	DeactivateUser(ctx context.Context, actor authz.Actor, userID uuid.UUID) error
	CreateExternalMapping(ctx context.Context, actor authz.Actor, userID uuid.UUID, req *dto.CreateExternalMappingRequest) (*dto.ExternalMappingResponse, error)
	InviteUser(ctx context.Context, actor authz.Actor, req *dto.InviteUserRequest) error
	AcceptInvite(ctx context.Context, req *dto.AcceptInviteRequest) (*dto.UserResponse, error)
	RequestPasswordReset(ctx context.Context, req *dto.RequestPasswordResetRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

// userServiceImpl is the implementation of UserService
type userServiceImpl struct {
	userRepo    repository.UserRepository
	tokenRepo   repository.TokenRepository
	leadRepo    repository.LeadRepository
	auditRepo   repository.AuditRepository
	email       client.EmailClient
	jwtSecret   string
	frontendURL string
	logger      *zap.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	leadRepo repository.LeadRepository,
	auditRepo repository.AuditRepository,
	email client.EmailClient,
	jwtSecret string,
	frontendURL string,
	logger *zap.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		leadRepo:    leadRepo,
		auditRepo:   auditRepo,
		email:       email,
		jwtSecret:   jwtSecret,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Login verifies credentials and issues a signed session token. Failures are
// uniform so callers cannot distinguish unknown emails from bad passwords.
func (s *userServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	invalid := response.NewUnauthorizedError("Invalid email or password", "")

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load user", err.Error())
	}
	if !user.IsActive {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, invalid
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(sessionTokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to sign session token", err.Error())
	}

	return &dto.LoginResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	}, nil
}

// CreateUser directly creates an active account. Admin only.
func (s *userServiceImpl) CreateUser(ctx context.Context, actor authz.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, authz.ErrNotAuthorized()
	}
	if !domain.IsValidRole(req.Role) {
		return nil, response.NewValidationError("Invalid role", string(req.Role))
	}

	email := normalizeEmail(req.Email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, response.NewAppError(response.ErrCodeAlreadyExists, "Email already in use", "")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check email", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to hash password", err.Error())
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        email,
		Role:         req.Role,
		IsActive:     true,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create user", err.Error())
	}

	s.audit(ctx, actor.UserID, domain.AuditUserCreated, map[string]string{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    string(user.Role),
	})

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// ListUsers returns accounts; admins and managers only
func (s *userServiceImpl) ListUsers(ctx context.Context, actor authz.Actor, includeInactive bool) ([]dto.UserResponse, error) {
	if !actor.CanManageAll() {
		return nil, authz.ErrNotAuthorized()
	}
	users, err := s.userRepo.FindAll(ctx, includeInactive)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load users", err.Error())
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToUserResponse(u))
	}
	return out, nil
}

// DeactivateUser soft-disables an account. Admin only; self-deactivation is
// rejected so the last admin cannot lock everyone out.
func (s *userServiceImpl) DeactivateUser(ctx context.Context, actor authz.Actor, userID uuid.UUID) error {
	if actor.Role != domain.RoleAdmin {
		return authz.ErrNotAuthorized()
	}
	if userID == actor.UserID {
		return response.NewValidationError("Cannot deactivate your own account", "")
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("User not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to load user", err.Error())
	}
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to deactivate user", err.Error())
	}

	s.audit(ctx, actor.UserID, domain.AuditUserDeactivated, map[string]string{
		"user_id": userID.String(),
	})
	return nil
}

// CreateExternalMapping links an external lead-intake identity to a portal
// user so webhook deliveries can resolve their loan officer. Admin only.
func (s *userServiceImpl) CreateExternalMapping(ctx context.Context, actor authz.Actor, userID uuid.UUID, req *dto.CreateExternalMappingRequest) (*dto.ExternalMappingResponse, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, authz.ErrNotAuthorized()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("User not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load user", err.Error())
	}
	if !user.IsActive {
		return nil, response.NewValidationError("Cannot map an inactive user", "")
	}

	if _, err := s.leadRepo.FindExternalUser(ctx, req.ExternalID); err == nil {
		return nil, response.NewAppError(response.ErrCodeAlreadyExists, "External identity already mapped", req.ExternalID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check external identity", err.Error())
	}

	source := req.Source
	if source == "" {
		source = "lead_mailbox"
	}
	mapping := &domain.ExternalUser{
		ExternalID: req.ExternalID,
		UserID:     user.ID,
		Source:     source,
	}
	if err := s.leadRepo.CreateExternalUser(ctx, mapping); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create mapping", err.Error())
	}

	s.audit(ctx, actor.UserID, domain.AuditExternalMapped, map[string]string{
		"user_id":     user.ID.String(),
		"external_id": mapping.ExternalID,
		"source":      mapping.Source,
	})

	resp := dto.ToExternalMappingResponse(mapping)
	return &resp, nil
}

// InviteUser issues a single-use invite token and emails the link. A repeat
// invite for the same email invalidates earlier open invites.
func (s *userServiceImpl) InviteUser(ctx context.Context, actor authz.Actor, req *dto.InviteUserRequest) error {
	if actor.Role != domain.RoleAdmin {
		return authz.ErrNotAuthorized()
	}
	if !domain.IsValidRole(req.Role) {
		return response.NewValidationError("Invalid role", string(req.Role))
	}

	email := normalizeEmail(req.Email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return response.NewAppError(response.ErrCodeAlreadyExists, "Email already in use", "")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewAppError(response.ErrCodeInternal, "Failed to check email", err.Error())
	}

	token, err := randomToken()
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to generate invite token", err.Error())
	}

	invite := &domain.InviteToken{
		Token:     token,
		Email:     email,
		Role:      req.Role,
		InvitedBy: actor.UserID,
		ExpiresAt: time.Now().UTC().Add(inviteTTL),
	}
	if err := s.tokenRepo.RotateInvite(ctx, email, invite); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to store invite", err.Error())
	}

	if s.email == nil {
		return response.NewAppError(response.ErrCodeUpstream, "Email delivery is not configured", "")
	}
	inviteURL := fmt.Sprintf("%s/accept-invite?token=%s", strings.TrimRight(s.frontendURL, "/"), token)
	if err := s.email.SendInvite(email, inviteURL); err != nil {
		return response.NewAppError(response.ErrCodeUpstream, "Failed to send invite email", err.Error())
	}

	s.audit(ctx, actor.UserID, domain.AuditInviteSent, map[string]string{
		"email": email,
		"role":  string(req.Role),
	})
	return nil
}

// AcceptInvite redeems an invite into an active account. An expired or
// already-used token fails before any write happens.
func (s *userServiceImpl) AcceptInvite(ctx context.Context, req *dto.AcceptInviteRequest) (*dto.UserResponse, error) {
	invite, err := s.tokenRepo.FindInviteByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeInviteInvalid, "Invite is invalid or expired", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load invite", err.Error())
	}
	if !invite.IsUsable(time.Now().UTC()) {
		return nil, response.NewAppError(response.ErrCodeInviteInvalid, "Invite is invalid or expired", "")
	}

	if _, err := s.userRepo.FindByEmail(ctx, invite.Email); err == nil {
		return nil, response.NewAppError(response.ErrCodeAlreadyExists, "Email already in use", "")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check email", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to hash password", err.Error())
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        invite.Email,
		Role:         invite.Role,
		IsActive:     true,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create user", err.Error())
	}
	if err := s.tokenRepo.MarkInviteUsed(ctx, invite.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to mark invite used", zap.String("invite_id", invite.ID.String()), zap.Error(err))
	}

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// RequestPasswordReset issues a reset token when the email matches an active
// account. The response is identical either way to avoid account probing.
func (s *userServiceImpl) RequestPasswordReset(ctx context.Context, req *dto.RequestPasswordResetRequest) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to load user", err.Error())
	}
	if !user.IsActive {
		return nil
	}

	token, err := randomToken()
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to generate reset token", err.Error())
	}
	reset := &domain.PasswordResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(resetTTL),
	}
	if err := s.tokenRepo.CreateReset(ctx, reset); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to store reset token", err.Error())
	}

	if s.email == nil {
		return response.NewAppError(response.ErrCodeUpstream, "Email delivery is not configured", "")
	}
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.frontendURL, "/"), token)
	if err := s.email.SendPasswordReset(user.Email, resetURL); err != nil {
		return response.NewAppError(response.ErrCodeUpstream, "Failed to send reset email", err.Error())
	}
	return nil
}

// ResetPassword redeems a reset token and replaces the password
func (s *userServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	reset, err := s.tokenRepo.FindResetByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewValidationError("Reset token is invalid or expired", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to load reset token", err.Error())
	}
	if !reset.IsUsable(time.Now().UTC()) {
		return response.NewValidationError("Reset token is invalid or expired", "")
	}

	user, err := s.userRepo.FindByID(ctx, reset.UserID)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to load user", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to hash password", err.Error())
	}
	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to update password", err.Error())
	}
	if err := s.tokenRepo.MarkResetUsed(ctx, reset.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to mark reset token used", zap.String("reset_id", reset.ID.String()), zap.Error(err))
	}
	return nil
}

func (s *userServiceImpl) audit(ctx context.Context, actorID uuid.UUID, action domain.AuditAction, details map[string]string) {
	payload, _ := json.Marshal(details)
	if err := s.auditRepo.Create(ctx, &domain.AuditLog{
		ActorID: actorID,
		Action:  action,
		Details: payload,
	}); err != nil {
		s.logger.Warn("failed to record audit entry", zap.String("action", string(action)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// randomToken returns 32 bytes of entropy, hex encoded
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
