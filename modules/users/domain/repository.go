package domain

import (
	"context"

	"github.com/agrilink/marketplace/modules/shared/types"
)

// ProfileRepository defines the persistence interface for profiles.
// This is a port - defined in domain, implemented in infrastructure.
type ProfileRepository interface {
	// Save persists a profile (create or update).
	Save(ctx context.Context, profile *Profile) error

	// FindByID retrieves a profile by account ID.
	// Returns ErrProfileNotFound if it doesn't exist.
	FindByID(ctx context.Context, id types.UserID) (*Profile, error)
}
