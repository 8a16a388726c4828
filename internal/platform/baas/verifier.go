package baas

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAudience is the audience the BaaS stamps on user access tokens.
const DefaultAudience = "authenticated"

// Claims are the access-token claims the application relies on.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 access tokens signed with the project's JWT secret.
type TokenVerifier struct {
	secret   []byte
	audience string
	leeway   time.Duration
}

func NewTokenVerifier(secret string) (*TokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("baas: jwt secret is required")
	}
	return &TokenVerifier{
		secret:   []byte(secret),
		audience: DefaultAudience,
		leeway:   30 * time.Second,
	}, nil
}

// Verify parses token and validates signature, expiry and audience.
func (v *TokenVerifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(v.audience),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims, nil
}

// Sign issues an HS256 token for claims. It is used by the in-process
// identity provider and by tests; production tokens come from the BaaS.
func (v *TokenVerifier) Sign(claims Claims) (string, error) {
	if len(claims.Audience) == 0 {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
