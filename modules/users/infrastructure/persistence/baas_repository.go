package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/internal/platform/baas"
	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users/domain"
)

const profilesTable = "profiles"

// profileRow mirrors the BaaS profiles table.
type profileRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	FarmName  string    `json:"farm_name"`
	Bio       string    `json:"bio"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BaaSRepository implements ProfileRepository on the BaaS row API. Requests
// run with the caller's access token so row-level security applies.
type BaaSRepository struct {
	client *baas.Client
}

// NewBaaSRepository creates a new BaaS-backed profile repository.
func NewBaaSRepository(client *baas.Client) *BaaSRepository {
	return &BaaSRepository{client: client}
}

// Compile-time interface check.
var _ domain.ProfileRepository = (*BaaSRepository)(nil)

func (r *BaaSRepository) Save(ctx context.Context, profile *domain.Profile) error {
	s := profile.Snapshot()
	row := profileRow{
		ID:        s.ID.String(),
		Email:     s.Email.String(),
		FullName:  s.Name.String(),
		Role:      s.Role.String(),
		Phone:     s.Phone.String(),
		Location:  s.Location,
		FarmName:  s.FarmName,
		Bio:       s.Bio,
		Status:    s.Status.String(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if err := r.client.Upsert(ctx, accessToken(ctx), profilesTable, "id", row, nil); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *BaaSRepository) FindByID(ctx context.Context, id types.UserID) (*domain.Profile, error) {
	var rows []profileRow
	_, err := r.client.Select(ctx, accessToken(ctx), baas.Query{
		Table:   profilesTable,
		Filters: []baas.Filter{baas.Eq("id", id.String())},
		Limit:   1,
	}, &rows)
	if err != nil {
		if errors.Is(err, baas.ErrNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	return scanProfile(rows[0])
}

func scanProfile(row profileRow) (*domain.Profile, error) {
	id, err := types.ParseUserID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored profile id %q: %w", row.ID, err)
	}
	email, err := domain.NewEmail(row.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid stored email for profile %s: %w", row.ID, err)
	}
	name, err := domain.NewName(row.FullName)
	if err != nil {
		return nil, fmt.Errorf("invalid stored name for profile %s: %w", row.ID, err)
	}
	role, err := domain.ParseRole(row.Role)
	if err != nil {
		return nil, fmt.Errorf("invalid stored role for profile %s: %w", row.ID, err)
	}
	// Phones entered before validation existed are dropped rather than
	// failing the whole read.
	phone, err := domain.NewPhone(row.Phone)
	if err != nil {
		phone = domain.Phone{}
	}
	status := domain.Status(row.Status)
	if !status.IsValid() {
		status = domain.StatusActive
	}

	return domain.Reconstitute(domain.ProfileSnapshot{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      role,
		Phone:     phone,
		Location:  row.Location,
		FarmName:  row.FarmName,
		Bio:       row.Bio,
		Status:    status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}), nil
}

// accessToken returns the caller's token; anonymous reads fall back to the
// project's anon key inside the client.
func accessToken(ctx context.Context) string {
	if id, ok := authn.FromContext(ctx); ok {
		return id.AccessToken
	}
	return ""
}
