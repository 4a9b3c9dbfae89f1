package infrastructure

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"library-service/internal/adapter/db/mongodb"
	"library-service/internal/config"
)

// NewMongo connects to MongoDB and ensures the library indexes exist.
func NewMongo(ctx context.Context, cfg *config.Config, l *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	client, err := mongodb.Connect(ctx, cfg.Mongo.URI, l)
	if err != nil {
		return nil, nil, err
	}

	db := client.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to prepare mongo database: %w", err)
	}

	l.Info("mongo database ready", zap.String("database", cfg.Mongo.Database))
	return client, db, nil
}
