package repository

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"loan-portal-api/internal/domain"
)

func setupPipelineTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	// Create pipeline_stages and loans tables for SQLite compatibility
	db.Exec(`CREATE TABLE pipeline_stages (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		stage_order INTEGER NOT NULL,
		color TEXT NOT NULL,
		is_default INTEGER NOT NULL DEFAULT 0,
		UNIQUE (user_id, stage_order)
	)`)
	db.Exec(`CREATE TABLE loans (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME,
		loan_number TEXT NOT NULL UNIQUE,
		borrower_name TEXT NOT NULL,
		borrower_phone TEXT,
		borrower_email TEXT,
		amount REAL,
		program TEXT,
		property_address TEXT,
		stage TEXT NOT NULL DEFAULT 'INTAKE',
		loan_officer_id TEXT NOT NULL,
		pipeline_stage_id TEXT,
		client_id TEXT
	)`)

	return db
}

func seedStages(t *testing.T, db *gorm.DB, ownerID uuid.UUID, count int) []*domain.PipelineStage {
	stages := make([]*domain.PipelineStage, 0, count)
	for i := 0; i < count; i++ {
		stage := &domain.PipelineStage{
			BaseModel: domain.BaseModel{ID: uuid.New()},
			UserID:    ownerID,
			Name:      "Stage",
			Order:     i,
			Color:     "#3B82F6",
		}
		if err := db.Create(stage).Error; err != nil {
			t.Fatalf("failed to seed stage %d: %v", i, err)
		}
		stages = append(stages, stage)
	}
	return stages
}

func TestPipelineRepository_Reorder(t *testing.T) {
	db := setupPipelineTestDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	stages := seedStages(t, db, ownerID, 4)

	// Reverse the board
	reversed := []uuid.UUID{stages[3].ID, stages[2].ID, stages[1].ID, stages[0].ID}
	if err := repo.Reorder(ctx, ownerID, reversed); err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}

	got, err := repo.FindByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("FindByOwner() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 stages, got %d", len(got))
	}
	for i, stage := range got {
		if stage.ID != reversed[i] {
			t.Errorf("position %d: got stage %v, want %v", i, stage.ID, reversed[i])
		}
		if stage.Order != i {
			t.Errorf("position %d: got order %d, want %d", i, stage.Order, i)
		}
	}
}

func TestPipelineRepository_Reorder_CountMismatch(t *testing.T) {
	db := setupPipelineTestDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	stages := seedStages(t, db, ownerID, 3)

	// Partial id list must be rejected, leaving the board untouched
	err := repo.Reorder(ctx, ownerID, []uuid.UUID{stages[1].ID, stages[0].ID})
	if err == nil {
		t.Fatal("Reorder() expected error for partial id list, got nil")
	}
	if !strings.Contains(err.Error(), "2 ids but owner has 3 stages") {
		t.Errorf("unexpected error message: %v", err)
	}

	got, err := repo.FindByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("FindByOwner() error = %v", err)
	}
	for i, stage := range got {
		if stage.ID != stages[i].ID {
			t.Errorf("position %d changed after failed reorder", i)
		}
	}
}

func TestPipelineRepository_Reorder_ForeignStage(t *testing.T) {
	db := setupPipelineTestDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	stages := seedStages(t, db, ownerID, 2)
	otherStages := seedStages(t, db, uuid.New(), 1)

	// An id from another officer's board rolls the whole transaction back
	err := repo.Reorder(ctx, ownerID, []uuid.UUID{stages[0].ID, otherStages[0].ID})
	if err == nil {
		t.Fatal("Reorder() expected error for foreign stage id, got nil")
	}

	got, err := repo.FindByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("FindByOwner() error = %v", err)
	}
	for i, stage := range got {
		if stage.Order != i || stage.ID != stages[i].ID {
			t.Errorf("board mutated after failed reorder: position %d has %v order %d", i, stage.ID, stage.Order)
		}
	}
}

// **Property: reorder contiguity**
// For any board of 1-7 stages and any permutation of its ids, Reorder leaves
// the stages in permutation order with stage_order exactly 0..n-1
func TestProperty_ReorderKeepsOrdersContiguous(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("Reorder yields contiguous orders for any permutation", prop.ForAll(
		func(count int, seed int64) bool {
			db := setupPipelineTestDB(t)
			repo := NewPipelineRepository(db)
			ctx := context.Background()

			ownerID := uuid.New()
			stages := seedStages(t, db, ownerID, count)

			ids := make([]uuid.UUID, count)
			for i, stage := range stages {
				ids[i] = stage.ID
			}
			rng := rand.New(rand.NewSource(seed))
			rng.Shuffle(count, func(i, j int) {
				ids[i], ids[j] = ids[j], ids[i]
			})

			if err := repo.Reorder(ctx, ownerID, ids); err != nil {
				return false
			}

			got, err := repo.FindByOwner(ctx, ownerID)
			if err != nil || len(got) != count {
				return false
			}
			for i, stage := range got {
				if stage.Order != i || stage.ID != ids[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 7),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestPipelineRepository_DeleteWithReassign(t *testing.T) {
	db := setupPipelineTestDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	stages := seedStages(t, db, ownerID, 2)
	doomed := stages[0]
	fallback := stages[1]

	loan := &domain.Loan{
		BaseModel:       domain.BaseModel{ID: uuid.New()},
		LoanNumber:      "LN-1001",
		BorrowerName:    "Jane Doe",
		Stage:           domain.StageIntake,
		LoanOfficerID:   ownerID,
		PipelineStageID: &doomed.ID,
	}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("failed to seed loan: %v", err)
	}

	t.Run("loans move to the fallback stage", func(t *testing.T) {
		if err := repo.DeleteWithReassign(ctx, doomed.ID, &fallback.ID); err != nil {
			t.Fatalf("DeleteWithReassign() error = %v", err)
		}

		var reloaded domain.Loan
		if err := db.First(&reloaded, "id = ?", loan.ID).Error; err != nil {
			t.Fatalf("failed to reload loan: %v", err)
		}
		if reloaded.PipelineStageID == nil || *reloaded.PipelineStageID != fallback.ID {
			t.Errorf("loan stage = %v, want fallback %v", reloaded.PipelineStageID, fallback.ID)
		}

		var count int64
		db.Model(&domain.PipelineStage{}).Where("id = ?", doomed.ID).Count(&count)
		if count != 0 {
			t.Error("deleted stage row still present")
		}
	})

	t.Run("nil fallback leaves loans unassigned", func(t *testing.T) {
		if err := repo.DeleteWithReassign(ctx, fallback.ID, nil); err != nil {
			t.Fatalf("DeleteWithReassign() error = %v", err)
		}

		var reloaded domain.Loan
		if err := db.First(&reloaded, "id = ?", loan.ID).Error; err != nil {
			t.Fatalf("failed to reload loan: %v", err)
		}
		if reloaded.PipelineStageID != nil {
			t.Errorf("loan stage = %v, want nil", reloaded.PipelineStageID)
		}
	})
}

func TestPipelineRepository_MaxOrder(t *testing.T) {
	db := setupPipelineTestDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()

	// Empty board reports -1 so the first stage lands at order 0
	max, err := repo.MaxOrder(ctx, ownerID)
	if err != nil {
		t.Fatalf("MaxOrder() error = %v", err)
	}
	if max != -1 {
		t.Errorf("MaxOrder() on empty board = %d, want -1", max)
	}

	seedStages(t, db, ownerID, 3)
	max, err = repo.MaxOrder(ctx, ownerID)
	if err != nil {
		t.Fatalf("MaxOrder() error = %v", err)
	}
	if max != 2 {
		t.Errorf("MaxOrder() = %d, want 2", max)
	}
}
