package authn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/agrilink/marketplace/internal/platform/baas"
	"github.com/agrilink/marketplace/internal/platform/session"
)

// RefreshFunc exchanges a refresh token for a new token pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (Tokens, error)

// TokenVerifier validates bearer access tokens.
type TokenVerifier interface {
	Verify(token string) (*baas.Claims, error)
}

// Config wires a Manager.
type Config struct {
	Store    session.Store
	Cookie   CookieConfig
	Verifier TokenVerifier
	Refresh  RefreshFunc
	// RefreshSkew refreshes access tokens this long before they expire.
	RefreshSkew time.Duration
	Logger      *slog.Logger
}

// Manager starts and ends cookie sessions and resolves request identities.
type Manager struct {
	store    session.Store
	cookie   CookieConfig
	verifier TokenVerifier
	refresh  RefreshFunc
	skew     time.Duration
	logger   *slog.Logger
	now      func() time.Time

	refreshes singleflight.Group
}

func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    cfg.Store,
		cookie:   cfg.Cookie,
		verifier: cfg.Verifier,
		refresh:  cfg.Refresh,
		skew:     cfg.RefreshSkew,
		logger:   logger.With(slog.String("component", "authn")),
		now:      time.Now,
	}
}

// Start stores a session for tokens and sets the session cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, tokens Tokens) (Identity, error) {
	s := &session.Session{
		UserID:          tokens.UserID,
		Email:           tokens.Email,
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		AccessExpiresAt: tokens.ExpiresAt,
	}
	if err := m.store.Create(ctx, s); err != nil {
		return Identity{}, fmt.Errorf("creating session: %w", err)
	}
	m.cookie.set(w, s.ID)
	return identityOf(s), nil
}

// End deletes the caller's session (if any) and clears the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	m.cookie.clear(w)
	id, ok := m.cookie.read(r)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Middleware attaches the caller's Identity to the request context when the
// request carries valid credentials. It never rejects a request.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.Resolve(r.Context(), r)
		switch {
		case err == nil:
			r = r.WithContext(WithIdentity(r.Context(), id))
		case errors.Is(err, session.ErrNotFound), errors.Is(err, ErrUnauthenticated):
			if _, ok := m.cookie.read(r); ok {
				m.cookie.clear(w)
			}
		default:
			m.logger.Warn("identity resolution failed", slog.Any("error", err))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireIdentity rejects requests that Middleware could not authenticate.
func RequireIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": ErrUnauthenticated.Error()})
			return
		}
		next(w, r)
	}
}

// Resolve authenticates r from its session cookie, falling back to a bearer
// token.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (Identity, error) {
	if id, ok := m.cookie.read(r); ok {
		return m.resolveSession(ctx, id)
	}
	if token, ok := bearerToken(r); ok && m.verifier != nil {
		claims, err := m.verifier.Verify(token)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		return Identity{
			UserID:      claims.Subject,
			Email:       claims.Email,
			AccessToken: token,
			ExpiresAt:   expiresAt,
		}, nil
	}
	return Identity{}, ErrUnauthenticated
}

func (m *Manager) resolveSession(ctx context.Context, id string) (Identity, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return Identity{}, err
	}
	if !s.NeedsRefresh(m.now(), m.skew) {
		return identityOf(s), nil
	}

	// Concurrent requests on one session share a single refresh.
	v, err, _ := m.refreshes.Do(s.ID, func() (any, error) {
		return m.refreshSession(context.WithoutCancel(ctx), s)
	})
	if err != nil {
		if m.now().Before(s.AccessExpiresAt) {
			m.logger.Warn("session refresh failed, using current token",
				slog.String("session_id", s.ID), slog.Any("error", err))
			return identityOf(s), nil
		}
		return Identity{}, err
	}
	return identityOf(v.(*session.Session)), nil
}

func (m *Manager) refreshSession(ctx context.Context, s *session.Session) (*session.Session, error) {
	if m.refresh == nil || s.RefreshToken == "" {
		return nil, fmt.Errorf("%w: session expired", ErrUnauthenticated)
	}

	tokens, err := m.refresh(ctx, s.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			// Refresh token revoked; the session is dead.
			_ = m.store.Delete(ctx, s.ID)
			return nil, err
		}
		if errors.Is(err, baas.ErrUnauthorized) || errors.Is(err, baas.ErrNotFound) {
			_ = m.store.Delete(ctx, s.ID)
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("refreshing session: %w", err)
	}

	updated := *s
	updated.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		updated.RefreshToken = tokens.RefreshToken
	}
	updated.AccessExpiresAt = tokens.ExpiresAt
	if err := m.store.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("saving refreshed session: %w", err)
	}

	m.logger.Debug("session refreshed", slog.String("session_id", s.ID))
	return &updated, nil
}

func identityOf(s *session.Session) Identity {
	return Identity{
		UserID:      s.UserID,
		Email:       s.Email,
		AccessToken: s.AccessToken,
		SessionID:   s.ID,
		ExpiresAt:   s.AccessExpiresAt,
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
