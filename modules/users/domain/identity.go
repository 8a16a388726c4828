package domain

import (
	"context"
	"time"

	"github.com/agrilink/marketplace/modules/shared/types"
)

// ProfileMetadata is stored with the account at sign-up so a profile can be
// created later, after the email is confirmed.
type ProfileMetadata struct {
	FullName string
	Role     string
	Phone    string
}

// AuthSession is a signed-in account with its token pair.
type AuthSession struct {
	UserID       types.UserID
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Metadata     ProfileMetadata
}

// SignUpResult is the outcome of registration. Session is nil when the
// account must confirm its email before signing in.
type SignUpResult struct {
	UserID  types.UserID
	Email   string
	Session *AuthSession
}

// IdentityProvider is the port to the hosted identity service.
// Implementations translate provider failures into the domain errors above.
type IdentityProvider interface {
	SignUp(ctx context.Context, email Email, password Password, meta ProfileMetadata) (*SignUpResult, error)
	SignIn(ctx context.Context, email Email, password string) (*AuthSession, error)
	VerifyEmail(ctx context.Context, email Email, code string) (*AuthSession, error)
	ResendVerification(ctx context.Context, email Email) error
	// Refresh returns ErrUnauthenticated when the refresh token is no longer valid.
	Refresh(ctx context.Context, refreshToken string) (*AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
}
