package dto

import (
	"taskManager/internal/models/session"
	"taskManager/internal/models/task"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUser is the identity the browser client keeps after login.
type SessionUser struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

type MeResponse struct {
	User *SessionUser `json:"user"`
}

func FromSession(s *session.Session) SessionUser {
	return SessionUser{
		Email: s.Email,
		Role:  string(s.Role),
		Name:  s.Name,
	}
}

// FromTaskList never returns nil, so an empty store encodes as [].
func FromTaskList(tasks []*task.Task) []*task.Task {
	if tasks == nil {
		return []*task.Task{}
	}
	return tasks
}
