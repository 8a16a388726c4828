package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// RefreshFunc lets the session manager refresh tokens through provider.
// A rejected refresh token is reported as authn.ErrUnauthenticated so the
// session is ended.
func RefreshFunc(provider domain.IdentityProvider) authn.RefreshFunc {
	return func(ctx context.Context, refreshToken string) (authn.Tokens, error) {
		s, err := provider.Refresh(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return authn.Tokens{}, fmt.Errorf("%w: %w", authn.ErrUnauthenticated, err)
			}
			return authn.Tokens{}, err
		}
		return TokensOf(s), nil
	}
}

// TokensOf converts a signed-in account into session tokens.
func TokensOf(s *domain.AuthSession) authn.Tokens {
	return authn.Tokens{
		UserID:       s.UserID.String(),
		Email:        s.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
	}
}
