// Package dedup remembers processed event ids.
package dedup

import (
	"context"
	"sync"
	"time"
)

const DefaultTTL = 24 * time.Hour

// Memory is a process-local claim set. Claims expire after ttl.
type Memory struct {
	mu     sync.Mutex
	ttl    time.Duration
	claims map[string]time.Time
	now    func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, claims: make(map[string]time.Time), now: time.Now}
}

func (m *Memory) Claim(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.prune(now)
	if _, ok := m.claims[eventID]; ok {
		return false, nil
	}
	m.claims[eventID] = now.Add(m.ttl)
	return true, nil
}

func (m *Memory) Release(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, eventID)
	return nil
}

func (m *Memory) prune(now time.Time) {
	for id, expires := range m.claims {
		if !now.Before(expires) {
			delete(m.claims, id)
		}
	}
}
