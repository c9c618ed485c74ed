package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

// modelInfo holds information about a domain model and its table name
type modelInfo struct {
	model     interface{}
	tableName string
}

// AutoMigrate runs GORM auto-migration for all domain models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&domain.User{},
		&domain.InviteToken{},
		&domain.PasswordResetToken{},
		&domain.Loan{},
		&domain.PipelineStage{},
		&domain.PipelineNote{},
		&domain.Task{},
		&domain.TaskTemplate{},
		&domain.TaskAttachment{},
		&domain.Client{},
		&domain.ClientDocument{},
		&domain.ExternalUser{},
		&domain.LeadMailboxLead{},
		&domain.AuditLog{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}

	return nil
}

// SafeAutoMigrate runs auto-migration model by model, logging per-table
// progress. Existing tables only receive schema differences.
func SafeAutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()

	models := []modelInfo{
		{&domain.User{}, "users"},
		{&domain.InviteToken{}, "invite_tokens"},
		{&domain.PasswordResetToken{}, "password_reset_tokens"},
		{&domain.Loan{}, "loans"},
		{&domain.PipelineStage{}, "pipeline_stages"},
		{&domain.PipelineNote{}, "pipeline_notes"},
		{&domain.Task{}, "tasks"},
		{&domain.TaskTemplate{}, "task_templates"},
		{&domain.TaskAttachment{}, "task_attachments"},
		{&domain.Client{}, "clients"},
		{&domain.ClientDocument{}, "client_documents"},
		{&domain.ExternalUser{}, "external_users"},
		{&domain.LeadMailboxLead{}, "lead_mailbox_leads"},
		{&domain.AuditLog{}, "audit_logs"},
	}

	for _, m := range models {
		tableExists := migrator.HasTable(m.model)

		if err := db.AutoMigrate(m.model); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", m.tableName),
				zap.Bool("table_existed", tableExists),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", m.tableName, err)
		}

		logger.Info("Migrated table",
			zap.String("table", m.tableName),
			zap.Bool("was_existing", tableExists),
		)
	}

	return nil
}
