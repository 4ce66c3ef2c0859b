package inmemory

import (
	"context"
	"sync"
	"time"

	"taskManager/internal/models/session"
	repo "taskManager/internal/repository"
)

// SessionStore drops expired sessions when they are read and on every
// PurgeExpired call.
type SessionStore struct {
	mtx      sync.Mutex
	sessions map[string]session.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]session.Session),
		now:      time.Now,
	}
}

func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.sessions[sess.Token]; exists {
		return repo.ErrDuplicate
	}
	s.sessions[sess.Token] = sess
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, token)
		return nil, repo.ErrNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.sessions, token)
	return nil
}

// PurgeExpired removes every expired session and reports how many went.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	purged := 0
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged, nil
}
