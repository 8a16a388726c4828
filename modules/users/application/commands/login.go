package commands

import (
	"context"
	"fmt"

	"github.com/agrilink/marketplace/modules/users/domain"
)

// LoginCommand signs in with email and password.
type LoginCommand struct {
	Email    string
	Password string
}

// LoginResult is a signed-in account and its profile.
type LoginResult struct {
	Session *domain.AuthSession
	Profile *domain.Profile
}

// LoginHandler handles the LoginCommand.
type LoginHandler struct {
	identity    domain.IdentityProvider
	provisioner *ProfileProvisioner
}

func NewLoginHandler(identity domain.IdentityProvider, provisioner *ProfileProvisioner) *LoginHandler {
	return &LoginHandler{identity: identity, provisioner: provisioner}
}

// Handle executes the login use case.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if cmd.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := h.identity.SignIn(ctx, email, cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}

	profile, err := h.provisioner.Ensure(ctx, session)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: session, Profile: profile}, nil
}
