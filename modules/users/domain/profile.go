// Package domain contains the business entities and rules for users.
// This is the innermost layer - it has no dependencies on outer layers.
package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	shareddomain "github.com/agrilink/marketplace/modules/shared/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

const (
	maxLocationLength = 100
	maxFarmNameLength = 100
	maxBioLength      = 1000
)

// Profile is the aggregate root for the users bounded context. Its id is the
// account id issued by the identity provider.
type Profile struct {
	shareddomain.AggregateRoot

	id        types.UserID
	email     Email
	name      Name
	role      Role
	phone     Phone
	location  string
	farmName  string
	bio       string
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// NewProfile creates the profile for a freshly registered account.
func NewProfile(id types.UserID, email Email, name Name, role Role, phone Phone) *Profile {
	now := time.Now().UTC()
	return &Profile{
		id:        id,
		email:     email,
		name:      name,
		role:      role,
		phone:     phone,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}
}

// ProfileSnapshot carries stored profile state for Reconstitute.
type ProfileSnapshot struct {
	ID        types.UserID
	Email     Email
	Name      Name
	Role      Role
	Phone     Phone
	Location  string
	FarmName  string
	Bio       string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reconstitute recreates a Profile from persistence.
// Used by repositories to rebuild aggregates from stored data.
func Reconstitute(s ProfileSnapshot) *Profile {
	return &Profile{
		id:        s.ID,
		email:     s.Email,
		name:      s.Name,
		role:      s.Role,
		phone:     s.Phone,
		location:  s.Location,
		farmName:  s.FarmName,
		bio:       s.Bio,
		status:    s.Status,
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
	}
}

// Getters - expose state without allowing direct mutation

func (p *Profile) ID() types.UserID     { return p.id }
func (p *Profile) Email() Email         { return p.email }
func (p *Profile) Name() Name           { return p.name }
func (p *Profile) Role() Role           { return p.role }
func (p *Profile) Phone() Phone         { return p.phone }
func (p *Profile) Location() string     { return p.location }
func (p *Profile) FarmName() string     { return p.farmName }
func (p *Profile) Bio() string          { return p.bio }
func (p *Profile) Status() Status       { return p.status }
func (p *Profile) CreatedAt() time.Time { return p.createdAt }
func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

// Snapshot exposes the full state for repositories.
func (p *Profile) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		ID:        p.id,
		Email:     p.email,
		Name:      p.name,
		Role:      p.role,
		Phone:     p.phone,
		Location:  p.location,
		FarmName:  p.farmName,
		Bio:       p.bio,
		Status:    p.status,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
	}
}

// ProfileChanges is an edit of the user-editable fields.
type ProfileChanges struct {
	Name     Name
	Phone    Phone
	Location string
	FarmName string
	Bio      string
}

// Update applies changes to the profile.
func (p *Profile) Update(c ProfileChanges) error {
	if p.status == StatusDeleted {
		return ErrProfileDeleted
	}
	location := strings.TrimSpace(c.Location)
	farmName := strings.TrimSpace(c.FarmName)
	bio := strings.TrimSpace(c.Bio)
	if utf8.RuneCountInString(location) > maxLocationLength ||
		utf8.RuneCountInString(farmName) > maxFarmNameLength ||
		utf8.RuneCountInString(bio) > maxBioLength {
		return ErrProfileFieldTooLong
	}

	p.name = c.Name
	p.phone = c.Phone
	p.location = location
	p.farmName = farmName
	p.bio = bio
	p.updatedAt = time.Now().UTC()
	return nil
}

// Delete marks the profile as deleted (soft delete).
// Adds UserDeletedEvent to be dispatched after persistence.
func (p *Profile) Delete() error {
	if p.status == StatusDeleted {
		return ErrProfileDeleted
	}
	p.status = StatusDeleted
	p.updatedAt = time.Now().UTC()
	p.AddDomainEvent(NewUserDeletedEvent(p.id))
	return nil
}

// IsActive returns true if the profile has not been deleted.
func (p *Profile) IsActive() bool {
	return p.status == StatusActive
}
