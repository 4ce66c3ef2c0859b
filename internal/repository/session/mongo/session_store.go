package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/database/mongodb"
	"taskManager/internal/logger"
	"taskManager/internal/models/session"
	repo "taskManager/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionStore relies on a TTL index for cleanup. The TTL monitor runs
// about once a minute, so reads also filter on expiresAt.
type SessionStore struct {
	sessions *mongo.Collection
	now      func() time.Time
}

func NewSessionStore(ctx context.Context, db *mongo.Database) (*SessionStore, error) {
	sessions := db.Collection(mongodb.SessionsCollection)

	_, err := sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
	})
	if err != nil {
		logger.Error("Repository: failed to create sessions TTL index", err)
		return nil, fmt.Errorf("creating sessions index: %w", err)
	}

	return &SessionStore{sessions: sessions, now: time.Now}, nil
}

func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	if _, err := s.sessions.InsertOne(ctx, sess); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: failed to store session", err)
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	filter := bson.M{
		"_id":       token,
		"expiresAt": bson.M{"$gt": s.now().UTC()},
	}

	var sess session.Session
	if err := s.sessions.FindOne(ctx, filter).Decode(&sess); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to load session", err)
		return nil, fmt.Errorf("loading session: %w", err)
	}
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.ExpiresAt = sess.ExpiresAt.UTC()
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.sessions.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		logger.Error("Repository: failed to delete session", err)
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
