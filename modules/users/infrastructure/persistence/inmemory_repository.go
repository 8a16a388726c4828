// Package persistence implements repository interfaces using specific storage backends.
// This is the outermost layer - it implements ports defined in the domain layer.
package persistence

import (
	"context"
	"sync"

	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// InMemoryRepository implements ProfileRepository using in-memory storage.
// Useful for testing and development. Snapshots are stored so callers never
// share a mutable aggregate with the store.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.ProfileSnapshot
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]domain.ProfileSnapshot),
	}
}

// Compile-time interface check.
var _ domain.ProfileRepository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) Save(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.ID().String()] = profile.Snapshot()
	return nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id types.UserID) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, exists := r.profiles[id.String()]
	if !exists {
		return nil, domain.ErrProfileNotFound
	}
	return domain.Reconstitute(snapshot), nil
}
