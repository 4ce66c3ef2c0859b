package service

import (
	"context"

	"taskManager/internal/models/session"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	List(context.Context) ([]*task.Task, error)
	Create(context.Context, *task.Task) error
	Replace(ctx context.Context, id string, fields task.Fields) (*task.Task, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type SessionStore interface {
	Save(context.Context, session.Session) error
	Get(ctx context.Context, token string) (*session.Session, error)
	Delete(ctx context.Context, token string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	VerifyDummy(password string) bool
}
