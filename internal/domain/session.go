package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session maps a server-side token to an authenticated user. Created at
// login, destroyed at logout, expired sessions are purged in the background.
type Session struct {
	Token     uuid.UUID `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
