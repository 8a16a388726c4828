package identity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrilink/marketplace/internal/platform/baas"
	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// MemoryConfig configures the in-process identity provider.
type MemoryConfig struct {
	// Signer issues access tokens; the same secret must verify bearer tokens.
	Signer *baas.TokenVerifier
	// RequireConfirmation makes new accounts confirm their email with a code.
	RequireConfirmation bool
	AccessTTL           time.Duration
	CodeTTL             time.Duration
	Logger              *slog.Logger
}

type memoryAccount struct {
	id           types.UserID
	email        string
	passwordHash []byte
	meta         domain.ProfileMetadata
	confirmed    bool
	code         string
	codeExpires  time.Time
}

// MemoryProvider is a self-contained identity provider for local development
// and tests. Passwords are bcrypt-hashed; verification codes are written to
// the log instead of being emailed.
type MemoryProvider struct {
	mu       sync.Mutex
	accounts map[string]*memoryAccount // by email
	refresh  map[string]string         // refresh token -> email

	signer     *baas.TokenVerifier
	confirm    bool
	accessTTL  time.Duration
	codeTTL    time.Duration
	logger     *slog.Logger
	now        func() time.Time
	bcryptCost int
}

func NewMemoryProvider(cfg MemoryConfig) *MemoryProvider {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &MemoryProvider{
		accounts:   make(map[string]*memoryAccount),
		refresh:    make(map[string]string),
		signer:     cfg.Signer,
		confirm:    cfg.RequireConfirmation,
		accessTTL:  cfg.AccessTTL,
		codeTTL:    cfg.CodeTTL,
		logger:     cfg.Logger.With(slog.String("component", "memory-identity")),
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Compile-time interface check.
var _ domain.IdentityProvider = (*MemoryProvider)(nil)

func (p *MemoryProvider) SignUp(ctx context.Context, email domain.Email, password domain.Password, meta domain.ProfileMetadata) (*domain.SignUpResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password.Reveal()), p.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	id, err := types.ParseUserID(uuid.NewString())
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email.String()]; exists {
		return nil, domain.ErrEmailExists
	}
	acct := &memoryAccount{
		id:           id,
		email:        email.String(),
		passwordHash: hash,
		meta:         meta,
		confirmed:    !p.confirm,
	}
	p.accounts[acct.email] = acct

	result := &domain.SignUpResult{UserID: id, Email: acct.email}
	if !acct.confirmed {
		p.issueCode(acct)
		return result, nil
	}
	if result.Session, err = p.issueSession(acct); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *MemoryProvider) SignIn(ctx context.Context, email domain.Email, password string) (*domain.AuthSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email.String()]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !acct.confirmed {
		return nil, domain.ErrEmailNotConfirmed
	}
	return p.issueSession(acct)
}

func (p *MemoryProvider) VerifyEmail(ctx context.Context, email domain.Email, code string) (*domain.AuthSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email.String()]
	if !ok || acct.code == "" || p.now().After(acct.codeExpires) ||
		subtle.ConstantTimeCompare([]byte(acct.code), []byte(code)) != 1 {
		return nil, domain.ErrVerificationInvalid
	}
	acct.confirmed = true
	acct.code = ""
	return p.issueSession(acct)
}

func (p *MemoryProvider) ResendVerification(ctx context.Context, email domain.Email) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Unknown and already confirmed addresses succeed silently so the
	// endpoint does not reveal which emails have accounts.
	if acct, ok := p.accounts[email.String()]; ok && !acct.confirmed {
		p.issueCode(acct)
	}
	return nil
}

func (p *MemoryProvider) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.refresh[refreshToken]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	delete(p.refresh, refreshToken) // rotated
	acct, ok := p.accounts[email]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return p.issueSession(acct)
}

// SignOut revokes every refresh token of the account behind accessToken.
func (p *MemoryProvider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.signer.Verify(accessToken)
	if err != nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for token, email := range p.refresh {
		if email == claims.Email {
			delete(p.refresh, token)
		}
	}
	return nil
}

// issueSession must be called with p.mu held.
func (p *MemoryProvider) issueSession(acct *memoryAccount) (*domain.AuthSession, error) {
	now := p.now()
	expiresAt := now.Add(p.accessTTL)
	access, err := p.signer.Sign(baas.Claims{
		Email: acct.email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := randomHex(24)
	if err != nil {
		return nil, err
	}
	p.refresh[refresh] = acct.email

	return &domain.AuthSession{
		UserID:       acct.id,
		Email:        acct.email,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		Metadata:     acct.meta,
	}, nil
}

// issueCode must be called with p.mu held.
func (p *MemoryProvider) issueCode(acct *memoryAccount) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		p.logger.Error("failed to generate verification code", slog.Any("error", err))
		return
	}
	acct.code = fmt.Sprintf("%06d", n.Int64())
	acct.codeExpires = p.now().Add(p.codeTTL)
	p.logger.Info("verification code issued",
		slog.String("email", acct.email),
		slog.String("code", acct.code),
	)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
