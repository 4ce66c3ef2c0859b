package session

import (
	"time"

	"taskManager/internal/models/user"
)

// TTL is fixed at issuance and never extended by activity.
const DefaultTTL = 7 * 24 * time.Hour

type Session struct {
	Token     string    `json:"token" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	Email     string    `json:"email" bson:"email"`
	Role      user.Role `json:"role" bson:"role"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

func ForUser(u *user.User, now time.Time, ttl time.Duration) Session {
	return Session{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Name:      u.Name,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
