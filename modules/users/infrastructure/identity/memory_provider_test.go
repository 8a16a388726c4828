package identity_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/internal/platform/baas"
	"github.com/agrilink/marketplace/modules/users/domain"
	"github.com/agrilink/marketplace/modules/users/infrastructure/identity"
)

func newMemoryProvider(t *testing.T, confirm bool, logs *bytes.Buffer) (*identity.MemoryProvider, *baas.TokenVerifier) {
	t.Helper()
	signer, err := baas.NewTokenVerifier("test-secret")
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}
	return identity.NewMemoryProvider(identity.MemoryConfig{
		Signer:              signer,
		RequireConfirmation: confirm,
		Logger:              slog.New(slog.NewTextHandler(logs, nil)),
	}), signer
}

func mustEmail(t *testing.T, s string) domain.Email {
	t.Helper()
	e, err := domain.NewEmail(s)
	if err != nil {
		t.Fatalf("invalid email %q: %v", s, err)
	}
	return e
}

func mustPassword(t *testing.T, s string) domain.Password {
	t.Helper()
	p, err := domain.NewPassword(s)
	if err != nil {
		t.Fatalf("invalid password: %v", err)
	}
	return p
}

func TestMemoryProvider_SignUpWithoutConfirmation(t *testing.T) {
	var logs bytes.Buffer
	p, signer := newMemoryProvider(t, false, &logs)
	ctx := context.Background()
	email := mustEmail(t, "ada@farm.example")

	res, err := p.SignUp(ctx, email, mustPassword(t, "harvest2026"), domain.ProfileMetadata{FullName: "Ada", Role: "farmer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Session == nil {
		t.Fatal("expected an immediate session")
	}

	claims, err := signer.Verify(res.Session.AccessToken)
	if err != nil {
		t.Fatalf("access token does not verify: %v", err)
	}
	if claims.Subject != res.UserID.String() {
		t.Errorf("expected subject %s, got %s", res.UserID, claims.Subject)
	}

	if _, err := p.SignUp(ctx, email, mustPassword(t, "harvest2026"), domain.ProfileMetadata{}); !errors.Is(err, domain.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	if _, err := p.SignIn(ctx, email, "wrong-pass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := p.SignIn(ctx, email, "harvest2026"); err != nil {
		t.Errorf("expected sign-in to succeed, got %v", err)
	}
}

func TestMemoryProvider_ConfirmationFlow(t *testing.T) {
	var logs bytes.Buffer
	p, _ := newMemoryProvider(t, true, &logs)
	ctx := context.Background()
	email := mustEmail(t, "bo@market.example")

	res, err := p.SignUp(ctx, email, mustPassword(t, "market42x"), domain.ProfileMetadata{FullName: "Bo", Role: "buyer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Session != nil {
		t.Fatal("expected confirmation to be required")
	}

	if _, err := p.SignIn(ctx, email, "market42x"); !errors.Is(err, domain.ErrEmailNotConfirmed) {
		t.Errorf("expected ErrEmailNotConfirmed, got %v", err)
	}
	if _, err := p.VerifyEmail(ctx, email, "000000x"); !errors.Is(err, domain.ErrVerificationInvalid) {
		t.Errorf("expected ErrVerificationInvalid, got %v", err)
	}

	m := regexp.MustCompile(`code=(\d{6})`).FindStringSubmatch(logs.String())
	if m == nil {
		t.Fatalf("verification code not logged: %s", logs.String())
	}

	session, err := p.VerifyEmail(ctx, email, m[1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Metadata.Role != "buyer" {
		t.Errorf("expected metadata to survive confirmation, got %+v", session.Metadata)
	}

	if _, err := p.VerifyEmail(ctx, email, m[1]); !errors.Is(err, domain.ErrVerificationInvalid) {
		t.Errorf("expected code to be single use, got %v", err)
	}
}

func TestMemoryProvider_RefreshRotatesAndSignOutRevokes(t *testing.T) {
	var logs bytes.Buffer
	p, _ := newMemoryProvider(t, false, &logs)
	ctx := context.Background()

	res, err := p.SignUp(ctx, mustEmail(t, "cy@farm.example"), mustPassword(t, "orchard99"), domain.ProfileMetadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refreshed, err := p.Refresh(ctx, res.Session.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Refresh(ctx, res.Session.RefreshToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected rotated token to be rejected, got %v", err)
	}

	if err := p.SignOut(ctx, refreshed.AccessToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Refresh(ctx, refreshed.RefreshToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected sign-out to revoke refresh token, got %v", err)
	}
}

func TestRefreshFunc_MapsRejectedTokens(t *testing.T) {
	var logs bytes.Buffer
	p, _ := newMemoryProvider(t, false, &logs)

	_, err := identity.RefreshFunc(p)(context.Background(), "unknown")
	if !errors.Is(err, authn.ErrUnauthenticated) {
		t.Errorf("expected authn.ErrUnauthenticated, got %v", err)
	}
}
