// Package queries contains read use cases for the users module.
// Queries return DTOs and never modify state.
package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// ProfileDTO is the owner's view of a profile.
type ProfileDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	Location  string    `json:"location,omitempty"`
	FarmName  string    `json:"farm_name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToProfileDTO converts a domain profile to its owner DTO.
func ToProfileDTO(p *domain.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID().String(),
		Email:     p.Email().String(),
		FullName:  p.Name().String(),
		Role:      p.Role().String(),
		Phone:     p.Phone().String(),
		Location:  p.Location(),
		FarmName:  p.FarmName(),
		Bio:       p.Bio(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

// PublicProfileDTO is what other users see: no contact details.
type PublicProfileDTO struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Location string `json:"location,omitempty"`
	FarmName string `json:"farm_name,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// GetProfileQuery reads the caller's own profile.
type GetProfileQuery struct {
	UserID string
}

type GetProfileHandler struct {
	repo domain.ProfileRepository
}

func NewGetProfileHandler(repo domain.ProfileRepository) *GetProfileHandler {
	return &GetProfileHandler{repo: repo}
}

func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (*ProfileDTO, error) {
	profile, err := findActive(ctx, h.repo, q.UserID)
	if err != nil {
		return nil, err
	}
	dto := ToProfileDTO(profile)
	return &dto, nil
}

// GetPublicProfileQuery reads another user's public profile.
type GetPublicProfileQuery struct {
	UserID string
}

type GetPublicProfileHandler struct {
	repo domain.ProfileRepository
}

func NewGetPublicProfileHandler(repo domain.ProfileRepository) *GetPublicProfileHandler {
	return &GetPublicProfileHandler{repo: repo}
}

func (h *GetPublicProfileHandler) Handle(ctx context.Context, q GetPublicProfileQuery) (*PublicProfileDTO, error) {
	profile, err := findActive(ctx, h.repo, q.UserID)
	if err != nil {
		return nil, err
	}
	return &PublicProfileDTO{
		ID:       profile.ID().String(),
		FullName: profile.Name().String(),
		Role:     profile.Role().String(),
		Location: profile.Location(),
		FarmName: profile.FarmName(),
		Bio:      profile.Bio(),
	}, nil
}

// findActive hides deleted profiles behind ErrProfileNotFound.
func findActive(ctx context.Context, repo domain.ProfileRepository, rawID string) (*domain.Profile, error) {
	userID, err := types.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}
	profile, err := repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("finding profile: %w", err)
	}
	if !profile.IsActive() {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}
