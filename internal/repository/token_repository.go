package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

// TokenRepository defines the interface for invite and password-reset tokens
type TokenRepository interface {
	CreateInvite(ctx context.Context, invite *domain.InviteToken) error
	FindInviteByToken(ctx context.Context, token string) (*domain.InviteToken, error)
	// RotateInvite invalidates all open invites for an email and inserts the
	// replacement in one transaction.
	RotateInvite(ctx context.Context, email string, invite *domain.InviteToken) error
	MarkInviteUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error

	CreateReset(ctx context.Context, reset *domain.PasswordResetToken) error
	FindResetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	MarkResetUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error

	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// tokenRepositoryImpl is the GORM implementation of TokenRepository
type tokenRepositoryImpl struct {
	db *gorm.DB
}

// NewTokenRepository creates a new instance of TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepositoryImpl{db: db}
}

// CreateInvite creates a new invite token
func (r *tokenRepositoryImpl) CreateInvite(ctx context.Context, invite *domain.InviteToken) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

// FindInviteByToken finds an invite by its opaque token value
func (r *tokenRepositoryImpl) FindInviteByToken(ctx context.Context, token string) (*domain.InviteToken, error) {
	var invite domain.InviteToken
	if err := r.db.WithContext(ctx).First(&invite, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// RotateInvite expires open invites for the email and inserts the new one
// atomically, so at most one usable invite exists per email.
func (r *tokenRepositoryImpl) RotateInvite(ctx context.Context, email string, invite *domain.InviteToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Model(&domain.InviteToken{}).
			Where("email = ? AND used_at IS NULL AND expires_at > ?", email, now).
			Update("expires_at", now).Error; err != nil {
			return err
		}
		return tx.Create(invite).Error
	})
}

// MarkInviteUsed stamps the invite as redeemed
func (r *tokenRepositoryImpl) MarkInviteUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.InviteToken{}).
		Where("id = ?", id).
		Update("used_at", usedAt).Error
}

// CreateReset creates a new password-reset token
func (r *tokenRepositoryImpl) CreateReset(ctx context.Context, reset *domain.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

// FindResetByToken finds a reset token by its opaque token value
func (r *tokenRepositoryImpl) FindResetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	var reset domain.PasswordResetToken
	if err := r.db.WithContext(ctx).First(&reset, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

// MarkResetUsed stamps the reset token as redeemed
func (r *tokenRepositoryImpl) MarkResetUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used_at", usedAt).Error
}

// DeleteExpired removes tokens whose expiry passed before the cutoff
func (r *tokenRepositoryImpl) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var total int64

	res := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&domain.InviteToken{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	res = r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&domain.PasswordResetToken{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	return total, nil
}
