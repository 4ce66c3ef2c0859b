package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/database/mongodb"
	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type UserStorage struct {
	users *mongo.Collection
}

// NewUserStorage creates the unique email index that backs the
// one-account-per-email rule.
func NewUserStorage(ctx context.Context, db *mongo.Database) (*UserStorage, error) {
	users := db.Collection(mongodb.UsersCollection)

	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	})
	if err != nil {
		logger.Error("Repository: failed to create users index", err)
		return nil, fmt.Errorf("creating users index: %w", err)
	}

	return &UserStorage{users: users}, nil
}

func (s *UserStorage) Create(ctx context.Context, u *user.User) error {
	u.Email = user.NormalizeEmail(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: failed to insert user", err, zap.String("email", u.Email))
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var found user.User
	err := s.users.FindOne(ctx, bson.M{"email": user.NormalizeEmail(email)}).Decode(&found)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to load user", err)
		return nil, fmt.Errorf("loading user: %w", err)
	}
	found.CreatedAt = found.CreatedAt.UTC()
	return &found, nil
}
