package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/session"
	repo "taskManager/internal/repository"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// SessionStore keeps each session as a JSON value that redis expires at
// the session's ExpiresAt.
type SessionStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired at %s", sess.ExpiresAt)
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := s.rdb.Set(ctx, keyPrefix+sess.Token, payload, ttl).Err(); err != nil {
		logger.Error("Repository: failed to store session", err)
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	payload, err := s.rdb.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to load session", err)
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, repo.ErrNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		logger.Error("Repository: failed to delete session", err)
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
