package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/logger"
	"taskManager/internal/models/session"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	users    UserRepository
	sessions SessionStore
	hasher   PasswordHasher
	ttl      time.Duration

	now      func() time.Time
	newToken func() (string, error)
}

func NewAuthService(users UserRepository, sessions SessionStore, hasher PasswordHasher, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newToken: auth.NewToken,
	}
}

func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Login issues a new session for valid credentials. An unknown email and
// a wrong password produce the same error after the same bcrypt work.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Session, error) {
	email = user.NormalizeEmail(email)

	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, NewMissingFields(missing...)
	}

	account, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, rep.ErrNotFound):
		s.hasher.VerifyDummy(password)
		logger.Info("Service: login failed", zap.String("reason", "unknown_email"))
		return nil, NewInvalidCredentials()
	case err != nil:
		return nil, NewStorageError(fmt.Errorf("loading user: %w", err))
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		logger.Info("Service: login failed", zap.String("reason", "wrong_password"), zap.String("user_id", account.ID))
		return nil, NewInvalidCredentials()
	}

	token, err := s.newToken()
	if err != nil {
		return nil, NewStorageError(fmt.Errorf("generating session token: %w", err))
	}

	sess := session.ForUser(account, s.now(), s.ttl)
	sess.Token = token
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, NewStorageError(fmt.Errorf("saving session: %w", err))
	}

	logger.Info("Service: session issued", zap.String("user_id", account.ID), zap.Time("expires_at", sess.ExpiresAt))
	return &sess, nil
}

// Logout is idempotent: destroying an unknown session succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return NewStorageError(fmt.Errorf("deleting session: %w", err))
	}
	return nil
}

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

type NewUser struct {
	Email    string
	Password string
	Name     string
	Role     user.Role
}

// CreateUser provisions an account. Role is mandatory.
func (s *AuthService) CreateUser(ctx context.Context, in NewUser) (*user.User, error) {
	email := user.NormalizeEmail(in.Email)

	var problems []string
	if email == "" || !strings.Contains(email, "@") {
		problems = append(problems, "A valid email is required.")
	}
	switch {
	case in.Password == "":
		problems = append(problems, "Password is required.")
	case len(in.Password) > MaxPasswordBytes:
		problems = append(problems, fmt.Sprintf("Password must be at most %d bytes.", MaxPasswordBytes))
	}
	role, err := user.ParseRole(string(in.Role))
	if err != nil {
		problems = append(problems, "Role must be admin or user.")
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, NewStorageError(fmt.Errorf("hashing password: %w", err))
	}

	account := &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
	}
	if err := s.users.Create(ctx, account); err != nil {
		if errors.Is(err, rep.ErrDuplicate) {
			return nil, NewBusinessError(CodeConflict, "A user with this email already exists")
		}
		return nil, NewStorageError(fmt.Errorf("creating user: %w", err))
	}

	logger.Info("Service: user created", zap.String("user_id", account.ID), zap.String("role", string(account.Role)))
	return account, nil
}
