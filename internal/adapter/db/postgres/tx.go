package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-service/pkg/logger"
)

type txKey struct{}

// Transactor runs functions inside a GORM transaction. Repositories in this
// package pick the transaction up from the context passed to fn.
type Transactor struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewTransactor creates a new Transactor.
func NewTransactor(db *gorm.DB, log *zap.Logger) *Transactor {
	return &Transactor{db: db, log: log}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
// A call nested in an active transaction joins it.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		logger.WithContext(ctx, t.log).Debug("transaction rolled back", zap.Error(err))
	}
	return err
}

// conn returns the transaction bound to ctx, or db when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
