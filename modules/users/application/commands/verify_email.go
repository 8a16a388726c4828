package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/agrilink/marketplace/modules/users/domain"
)

// VerifyEmailCommand confirms an address with the emailed code.
type VerifyEmailCommand struct {
	Email string
	Code  string
}

type VerifyEmailHandler struct {
	identity    domain.IdentityProvider
	provisioner *ProfileProvisioner
}

func NewVerifyEmailHandler(identity domain.IdentityProvider, provisioner *ProfileProvisioner) *VerifyEmailHandler {
	return &VerifyEmailHandler{identity: identity, provisioner: provisioner}
}

// Handle verifies the code and signs the account in.
func (h *VerifyEmailHandler) Handle(ctx context.Context, cmd VerifyEmailCommand) (*LoginResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	code := strings.TrimSpace(cmd.Code)
	if code == "" {
		return nil, domain.ErrVerificationInvalid
	}

	session, err := h.identity.VerifyEmail(ctx, email, code)
	if err != nil {
		return nil, fmt.Errorf("verifying email: %w", err)
	}

	profile, err := h.provisioner.Ensure(ctx, session)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: session, Profile: profile}, nil
}

// ResendVerificationCommand asks for a new confirmation email.
type ResendVerificationCommand struct {
	Email string
}

type ResendVerificationHandler struct {
	identity domain.IdentityProvider
}

func NewResendVerificationHandler(identity domain.IdentityProvider) *ResendVerificationHandler {
	return &ResendVerificationHandler{identity: identity}
}

func (h *ResendVerificationHandler) Handle(ctx context.Context, cmd ResendVerificationCommand) error {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if err := h.identity.ResendVerification(ctx, email); err != nil {
		return fmt.Errorf("resending verification: %w", err)
	}
	return nil
}
