package commands

import (
	"context"
	"fmt"

	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/transaction"
	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// DeleteProfileCommand represents the intent to delete a profile.
type DeleteProfileCommand struct {
	UserID string
}

// DeleteProfileHandler handles the DeleteProfileCommand.
type DeleteProfileHandler struct {
	repo      domain.ProfileRepository
	txScope   transaction.Scope
	publisher events.Publisher
}

func NewDeleteProfileHandler(repo domain.ProfileRepository, txScope transaction.Scope, publisher events.Publisher) *DeleteProfileHandler {
	return &DeleteProfileHandler{
		repo:      repo,
		txScope:   txScope,
		publisher: publisher,
	}
}

// Handle executes the delete profile use case.
// The soft delete and the UserDeleted publication share one transaction
// scope, so subscribers (order cancellation) see a consistent outcome.
func (h *DeleteProfileHandler) Handle(ctx context.Context, cmd DeleteProfileCommand) error {
	// Parse user ID
	userID, err := types.ParseUserID(cmd.UserID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	return h.txScope.Execute(ctx, func(ctx context.Context) error {
		// Verify profile exists
		profile, err := h.repo.FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("finding profile: %w", err)
		}

		// Mark as deleted (soft delete via domain method)
		if err := profile.Delete(); err != nil {
			return fmt.Errorf("deleting profile: %w", err)
		}

		// Persist the deletion
		if err := h.repo.Save(ctx, profile); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}

		// Publish domain events collected by the aggregate
		if err := h.publisher.Publish(ctx, profile.PopDomainEvents()...); err != nil {
			return fmt.Errorf("publishing events: %w", err)
		}
		return nil
	})
}
