package commands

import (
	"context"
	"fmt"

	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// UpdateProfileCommand replaces the editable profile fields.
type UpdateProfileCommand struct {
	UserID   string
	FullName string
	Phone    string
	Location string
	FarmName string
	Bio      string
}

// UpdateProfileHandler handles the UpdateProfileCommand.
type UpdateProfileHandler struct {
	repo domain.ProfileRepository
}

func NewUpdateProfileHandler(repo domain.ProfileRepository) *UpdateProfileHandler {
	return &UpdateProfileHandler{repo: repo}
}

// Handle executes the update profile use case.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*domain.Profile, error) {
	userID, err := types.ParseUserID(cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}
	name, err := domain.NewName(cmd.FullName)
	if err != nil {
		return nil, fmt.Errorf("invalid name: %w", err)
	}
	phone, err := domain.NewPhone(cmd.Phone)
	if err != nil {
		return nil, fmt.Errorf("invalid phone: %w", err)
	}

	profile, err := h.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("finding profile: %w", err)
	}

	if err := profile.Update(domain.ProfileChanges{
		Name:     name,
		Phone:    phone,
		Location: cmd.Location,
		FarmName: cmd.FarmName,
		Bio:      cmd.Bio,
	}); err != nil {
		return nil, err
	}

	if err := h.repo.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return profile, nil
}
