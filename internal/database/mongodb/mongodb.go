// Package mongodb opens the document store client shared by the mongo
// repositories.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	TasksCollection    = "tasks"
	UsersCollection    = "users"
	SessionsCollection = "sessions"
)

func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("Repository: failed to create mongo client", err)
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("Repository: mongo ping failed", err)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("Repository: connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

func Disconnect(ctx context.Context, client *mongo.Client) error {
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	logger.Info("Repository: MongoDB connection closed")
	return nil
}
