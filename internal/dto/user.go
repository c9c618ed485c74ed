package dto

import (
	"time"

	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
)

// LoginRequest is the credential payload for session creation
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed session token and the authenticated user
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateUserRequest is the admin-only direct user creation payload
type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Role     domain.Role `json:"role" binding:"required"`
	Password string      `json:"password" binding:"required,min=8"`
}

// InviteUserRequest asks for an invite email to be sent
type InviteUserRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Role  domain.Role `json:"role" binding:"required"`
}

// AcceptInviteRequest redeems an invite token into a new account
type AcceptInviteRequest struct {
	Token    string `json:"token" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// RequestPasswordResetRequest starts the reset flow for an email
type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest redeems a reset token
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateExternalMappingRequest links an external lead-intake identity to a
// portal user
type CreateExternalMappingRequest struct {
	ExternalID string `json:"external_id" binding:"required"`
	Source     string `json:"source"`
}

// ExternalMappingResponse is the API representation of an external identity
// mapping
type ExternalMappingResponse struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	UserID     uuid.UUID `json:"user_id"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToExternalMappingResponse converts a domain mapping to its API representation
func ToExternalMappingResponse(m *domain.ExternalUser) ExternalMappingResponse {
	return ExternalMappingResponse{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		UserID:     m.UserID,
		Source:     m.Source,
		CreatedAt:  m.CreatedAt,
	}
}

// UserResponse is the API representation of a user
type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

// ToUserResponse converts a domain user to its API representation
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
