package inmemory

import (
	"context"
	"sync"
	"time"

	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
)

// UserStorage is keyed by normalized email.
type UserStorage struct {
	mtx   sync.RWMutex
	users map[string]user.User
}

func NewUserStorage() *UserStorage {
	return &UserStorage{users: make(map[string]user.User)}
}

func (s *UserStorage) Create(ctx context.Context, u *user.User) error {
	u.Email = user.NormalizeEmail(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.users[u.Email]; exists {
		return repo.ErrDuplicate
	}
	s.users[u.Email] = *u
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[user.NormalizeEmail(email)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}
