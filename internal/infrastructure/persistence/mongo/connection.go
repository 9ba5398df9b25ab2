// Package mongo provides document-database repository implementations
// backed by the managed store's MongoDB-compatible API
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/healyfit/healy/internal/infrastructure/config"
)

const (
	usersCollection         = "users"
	conversationsCollection = "conversations"
)

// Connect establishes a connection to the document database and verifies it
// with a ping before returning the database handle.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI()).
		SetConnectTimeout(cfg.Database.ConnectTimeout)

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document database: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping document database: %w", err)
	}

	db := client.Database(cfg.Database.Database)

	if err := ensureIndexes(connectCtx, db); err != nil {
		return nil, err
	}

	logger.Info("Connected to document database",
		zap.String("database", cfg.Database.Database),
		zap.String("host", cfg.Database.Host),
	)

	return db, nil
}

// Disconnect closes the underlying client connection
func Disconnect(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}

// ensureIndexes creates the indexes the fixed query predicates rely on
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = db.Collection(conversationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create conversations user index: %w", err)
	}

	return nil
}
