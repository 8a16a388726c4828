// Package commands contains write use cases for the users module.
// Commands change state and typically don't return data (except IDs).
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// RegisterCommand represents the intent to open a new account.
type RegisterCommand struct {
	Email    string
	Password string
	FullName string
	Role     string
	Phone    string
}

// RegisterResult reports the new account. Session is set only when the
// identity provider does not require email confirmation.
type RegisterResult struct {
	UserID                    string
	EmailConfirmationRequired bool
	Session                   *domain.AuthSession
}

// RegisterHandler handles the RegisterCommand.
type RegisterHandler struct {
	identity    domain.IdentityProvider
	provisioner *ProfileProvisioner
	publisher   events.Publisher
	logger      *slog.Logger
}

func NewRegisterHandler(
	identity domain.IdentityProvider,
	provisioner *ProfileProvisioner,
	publisher events.Publisher,
	logger *slog.Logger,
) *RegisterHandler {
	return &RegisterHandler{
		identity:    identity,
		provisioner: provisioner,
		publisher:   publisher,
		logger:      logger,
	}
}

// Handle executes the register use case.
func (h *RegisterHandler) Handle(ctx context.Context, cmd RegisterCommand) (*RegisterResult, error) {
	// Validate and create value objects
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	password, err := domain.NewPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}
	name, err := domain.NewName(cmd.FullName)
	if err != nil {
		return nil, fmt.Errorf("invalid name: %w", err)
	}
	role, err := domain.ParseRole(cmd.Role)
	if err != nil {
		return nil, fmt.Errorf("invalid role: %w", err)
	}
	phone, err := domain.NewPhone(cmd.Phone)
	if err != nil {
		return nil, fmt.Errorf("invalid phone: %w", err)
	}

	result, err := h.identity.SignUp(ctx, email, password, domain.ProfileMetadata{
		FullName: name.String(),
		Role:     role.String(),
		Phone:    phone.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}

	confirmationRequired := result.Session == nil
	if !confirmationRequired {
		// Signed in straight away: the profile can be written now.
		if _, err := h.provisioner.Ensure(ctx, result.Session); err != nil {
			return nil, err
		}
	}

	// Publish domain event
	if h.publisher != nil {
		event := domain.NewUserRegisteredEvent(result.UserID, email, name, role, confirmationRequired)
		if err := h.publisher.Publish(ctx, event); err != nil {
			// Registration already happened upstream; a lost event only
			// skips the welcome notice.
			h.logger.Warn("failed to publish user registered event", slog.Any("error", err))
		}
	}

	return &RegisterResult{
		UserID:                    result.UserID.String(),
		EmailConfirmationRequired: confirmationRequired,
		Session:                   result.Session,
	}, nil
}
