package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// ProfileProvisioner makes sure a signed-in account has a profile row.
// Accounts that had to confirm their email get their profile on first
// sign-in, built from the metadata captured at sign-up.
type ProfileProvisioner struct {
	repo   domain.ProfileRepository
	logger *slog.Logger
}

func NewProfileProvisioner(repo domain.ProfileRepository, logger *slog.Logger) *ProfileProvisioner {
	return &ProfileProvisioner{repo: repo, logger: logger}
}

// Ensure loads or creates the profile for session. Deleted profiles are
// refused with ErrProfileDeleted.
func (p *ProfileProvisioner) Ensure(ctx context.Context, session *domain.AuthSession) (*domain.Profile, error) {
	// Row access runs as the signed-in user.
	ctx = authn.WithIdentity(ctx, authn.Identity{
		UserID:      session.UserID.String(),
		Email:       session.Email,
		AccessToken: session.AccessToken,
	})

	profile, err := p.repo.FindByID(ctx, session.UserID)
	switch {
	case err == nil:
		if !profile.IsActive() {
			return nil, domain.ErrProfileDeleted
		}
		return profile, nil
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, fmt.Errorf("finding profile: %w", err)
	}

	profile, err = profileFromMetadata(session)
	if err != nil {
		return nil, err
	}
	if err := p.repo.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	p.logger.Info("profile provisioned",
		slog.String("user_id", session.UserID.String()),
		slog.String("role", profile.Role().String()),
	)
	return profile, nil
}

func profileFromMetadata(session *domain.AuthSession) (*domain.Profile, error) {
	email, err := domain.NewEmail(session.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid account email: %w", err)
	}

	name, err := domain.NewName(session.Metadata.FullName)
	if err != nil {
		// Fall back to the mailbox name for accounts created elsewhere.
		local, _, _ := strings.Cut(email.String(), "@")
		if name, err = domain.NewName(local); err != nil {
			name, _ = domain.NewName("AgriLink member")
		}
	}

	role, err := domain.ParseRole(session.Metadata.Role)
	if err != nil {
		role = domain.RoleBuyer
	}
	phone, err := domain.NewPhone(session.Metadata.Phone)
	if err != nil {
		phone = domain.Phone{}
	}

	return domain.NewProfile(session.UserID, email, name, role, phone), nil
}
