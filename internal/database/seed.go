package database

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

// defaultTaskTemplates is the stock workflow configuration consumed by the
// stage-transition engine.
func defaultTaskTemplates() []*domain.TaskTemplate {
	disclosure := domain.RoleDisclosureSpecialist
	qc := domain.RoleQC
	processorSr := domain.RoleProcessorSr
	vaTitle := domain.TaskKindVATitle
	vaHOI := domain.TaskKindVAHOI
	vaPayoff := domain.TaskKindVAPayoff
	vaAppraisal := domain.TaskKindVAAppraisal
	submitQC := domain.TaskKindSubmitQC

	return []*domain.TaskTemplate{
		{
			Stage:         domain.StageDisclosuresPending,
			Title:         "Prepare disclosures",
			Description:   "Generate the initial disclosure package and send it to the borrower",
			AssignedRole:  &disclosure,
			DueOffsetDays: 1,
		},
		{
			Stage:         domain.StageDisclosuresPending,
			Title:         "Collect signed package",
			Description:   "Chase the borrower for the signed disclosure package",
			AssignedRole:  &disclosure,
			DueOffsetDays: 3,
		},
		{
			Stage:         domain.StageSubmitToUWPrep,
			Title:         "Order title report",
			Kind:          &vaTitle,
			DueOffsetDays: 2,
		},
		{
			Stage:         domain.StageSubmitToUWPrep,
			Title:         "Collect HOI binder",
			Kind:          &vaHOI,
			DueOffsetDays: 2,
		},
		{
			Stage:         domain.StageSubmitToUWPrep,
			Title:         "Request payoff statement",
			Kind:          &vaPayoff,
			DueOffsetDays: 2,
		},
		{
			Stage:         domain.StageSubmitToUWPrep,
			Title:         "Schedule appraisal",
			Kind:          &vaAppraisal,
			DueOffsetDays: 3,
		},
		{
			Stage:         domain.StageSubmittedToUW,
			Title:         "Pre-submission QC review",
			AssignedRole:  &qc,
			Kind:          &submitQC,
			DueOffsetDays: 1,
		},
		{
			Stage:         domain.StageConditionallyAppr,
			Title:         "Clear underwriting conditions",
			AssignedRole:  &processorSr,
			DueOffsetDays: 5,
		},
		{
			Stage:         domain.StageClearToClose,
			Title:         "Schedule closing",
			AssignedRole:  &processorSr,
			DueOffsetDays: 2,
		},
		{
			Stage:         domain.StageClosing,
			Title:         "Prepare closing package",
			AssignedRole:  &processorSr,
			DueOffsetDays: 1,
		},
	}
}

// SeedTaskTemplates inserts the stock task templates on an empty table.
// A non-empty table is left untouched, keeping the seed idempotent.
func SeedTaskTemplates(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&domain.TaskTemplate{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count task templates: %w", err)
	}
	if count > 0 {
		logger.Info("Task templates already present, skipping seed", zap.Int64("count", count))
		return nil
	}

	templates := defaultTaskTemplates()
	for _, tpl := range templates {
		tpl.ID = uuid.New()
	}
	if err := db.Create(templates).Error; err != nil {
		return fmt.Errorf("failed to seed task templates: %w", err)
	}

	logger.Info("Seeded default task templates", zap.Int("count", len(templates)))
	return nil
}
