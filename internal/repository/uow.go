package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos bundles the tx-scoped repositories a unit of work hands to its
// callback. Every repository in the bundle shares one transaction.
type Repos struct {
	Loans LoanRepository
	Tasks TaskRepository
	Audit AuditRepository
}

// UnitOfWork runs multi-repository writes as one atomic transaction. The
// stage-change sequence (stage update, audit entry, task expansion) must not
// leave partial state behind.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

// gormUnitOfWork is the GORM implementation of UnitOfWork
type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

// WithinTx opens a transaction and passes tx-scoped repositories to fn.
// Any error rolls the whole sequence back.
func (u *gormUnitOfWork) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos{
			Loans: NewLoanRepository(tx),
			Tasks: NewTaskRepository(tx),
			Audit: NewAuditRepository(tx),
		})
	})
}
