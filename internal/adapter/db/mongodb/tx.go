package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"library-service/pkg/logger"
)

// Transactor runs functions inside a MongoDB session transaction.
type Transactor struct {
	client *mongo.Client
	log    *zap.Logger
}

// NewTransactor creates a new Transactor.
func NewTransactor(client *mongo.Client, log *zap.Logger) *Transactor {
	return &Transactor{client: client, log: log}
}

// WithinTransaction commits when fn returns nil and aborts otherwise. fn may
// be retried by the driver on transient transaction errors. A call made with
// a session context joins that session.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	err := t.client.UseSession(ctx, func(sc mongo.SessionContext) error {
		_, err := sc.WithTransaction(sc, func(sc mongo.SessionContext) (any, error) {
			return nil, fn(sc)
		})
		return err
	})
	if err != nil {
		logger.WithContext(ctx, t.log).Debug("transaction aborted", zap.Error(err))
	}
	return err
}
