// Package identity adapts identity services to the users domain's
// IdentityProvider port.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/agrilink/marketplace/internal/platform/baas"
	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// Metadata keys stored with the account at sign-up.
const (
	metaFullName = "full_name"
	metaRole     = "role"
	metaPhone    = "phone"
)

// BaaSProvider implements IdentityProvider on the BaaS auth API.
type BaaSProvider struct {
	client *baas.Client
}

func NewBaaSProvider(client *baas.Client) *BaaSProvider {
	return &BaaSProvider{client: client}
}

// Compile-time interface check.
var _ domain.IdentityProvider = (*BaaSProvider)(nil)

func (p *BaaSProvider) SignUp(ctx context.Context, email domain.Email, password domain.Password, meta domain.ProfileMetadata) (*domain.SignUpResult, error) {
	data := map[string]any{
		metaFullName: meta.FullName,
		metaRole:     meta.Role,
	}
	if meta.Phone != "" {
		data[metaPhone] = meta.Phone
	}

	res, err := p.client.SignUp(ctx, baas.SignUpParams{
		Email:    email.String(),
		Password: password.Reveal(),
		Data:     data,
	})
	if err != nil {
		return nil, mapError(err)
	}

	userID, err := types.ParseUserID(res.User.ID)
	if err != nil {
		return nil, fmt.Errorf("identity service returned user id %q: %w", res.User.ID, err)
	}
	out := &domain.SignUpResult{UserID: userID, Email: res.User.Email}
	if res.Session != nil {
		if out.Session, err = toAuthSession(res.Session); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *BaaSProvider) SignIn(ctx context.Context, email domain.Email, password string) (*domain.AuthSession, error) {
	s, err := p.client.SignInWithPassword(ctx, email.String(), password)
	if err != nil {
		return nil, mapError(err)
	}
	return toAuthSession(s)
}

func (p *BaaSProvider) VerifyEmail(ctx context.Context, email domain.Email, code string) (*domain.AuthSession, error) {
	s, err := p.client.VerifyOTP(ctx, baas.OTPTypeEmail, email.String(), code)
	if err != nil {
		return nil, mapError(err)
	}
	return toAuthSession(s)
}

func (p *BaaSProvider) ResendVerification(ctx context.Context, email domain.Email) error {
	if err := p.client.Resend(ctx, baas.OTPTypeSignup, email.String()); err != nil {
		return mapError(err)
	}
	return nil
}

func (p *BaaSProvider) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	s, err := p.client.RefreshSession(ctx, refreshToken)
	if err != nil {
		var apiErr *baas.Error
		if errors.Is(err, baas.ErrUnauthorized) || errors.Is(err, baas.ErrNotFound) ||
			(errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
		}
		return nil, err
	}
	return toAuthSession(s)
}

func (p *BaaSProvider) SignOut(ctx context.Context, accessToken string) error {
	if err := p.client.SignOut(ctx, accessToken); err != nil && !errors.Is(err, baas.ErrUnauthorized) {
		return err
	}
	return nil
}

func toAuthSession(s *baas.Session) (*domain.AuthSession, error) {
	userID, err := types.ParseUserID(s.User.ID)
	if err != nil {
		return nil, fmt.Errorf("identity service returned user id %q: %w", s.User.ID, err)
	}
	return &domain.AuthSession{
		UserID:       userID,
		Email:        s.User.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.Expiry(),
		Metadata: domain.ProfileMetadata{
			FullName: metaString(s.User.UserMetadata, metaFullName),
			Role:     metaString(s.User.UserMetadata, metaRole),
			Phone:    metaString(s.User.UserMetadata, metaPhone),
		},
	}, nil
}

func metaString(meta map[string]any, key string) string {
	v, _ := meta[key].(string)
	return v
}

// mapError translates BaaS failures into users domain errors, keeping the
// original error in the chain for logging.
func mapError(err error) error {
	var domainErr error
	switch {
	case errors.Is(err, baas.ErrInvalidCredentials):
		domainErr = domain.ErrInvalidCredentials
	case errors.Is(err, baas.ErrEmailNotConfirmed):
		domainErr = domain.ErrEmailNotConfirmed
	case errors.Is(err, baas.ErrUserExists):
		domainErr = domain.ErrEmailExists
	case errors.Is(err, baas.ErrWeakPassword):
		domainErr = domain.ErrPasswordWeak
	case errors.Is(err, baas.ErrOTPExpired):
		domainErr = domain.ErrVerificationInvalid
	case errors.Is(err, baas.ErrRateLimited):
		domainErr = domain.ErrTooManyRequests
	default:
		return err
	}
	return fmt.Errorf("%w: %w", domainErr, err)
}
