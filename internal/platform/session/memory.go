package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// sweepInterval is the minimum time between full scans for expired entries.
const sweepInterval = time.Minute

// MemoryStore keeps sessions in process memory. Expired entries are dropped
// on access, and Create sweeps the whole map at most once per sweepInterval.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
	}
	if s.ID == "" {
		s.ID = newID()
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	m.entries[s.ID] = memoryEntry{session: *s, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(id)
	if !ok {
		return nil, ErrNotFound
	}
	s := e.session
	return &s, nil
}

func (m *MemoryStore) Update(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(s.ID)
	if !ok {
		return ErrNotFound
	}
	s.UpdatedAt = m.now()
	e.session = *s
	m.entries[s.ID] = e
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// live must be called with mu held.
func (m *MemoryStore) live(id string) (memoryEntry, bool) {
	e, ok := m.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, id)
		return memoryEntry{}, false
	}
	return e, true
}

// sweep must be called with mu held.
func (m *MemoryStore) sweep(now time.Time) {
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
		}
	}
	m.lastSweep = now
}

var _ Store = (*MemoryStore)(nil)
