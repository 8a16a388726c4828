// Package session keeps server-side login sessions. The browser only holds an
// opaque session id in a cookie; BaaS tokens stay on the server.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session binds a cookie id to the caller's BaaS tokens.
type Session struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NeedsRefresh reports whether the access token expires within skew of now.
func (s *Session) NeedsRefresh(now time.Time, skew time.Duration) bool {
	return !s.AccessExpiresAt.IsZero() && now.Add(skew).After(s.AccessExpiresAt)
}

// Store persists sessions. Implementations apply their own TTL from Create.
type Store interface {
	// Create assigns an id when s.ID is empty and stores s.
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Update replaces an existing session without extending its lifetime.
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

func newID() string {
	return uuid.NewString()
}
