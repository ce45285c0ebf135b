// Package session provides the Redis-backed authenticated-session store.
package session

import (
	"context"
	"time"
)

// Session is one authenticated caller session.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's validity window has closed.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the session persistence surface.
type Store interface {
	Create(ctx context.Context, s Session) error
	// Get returns nil, nil when the session does not exist.
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
