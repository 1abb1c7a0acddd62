package session

import (
	"context"
	"time"

	"nannyledger/internal/cache"
)

const defaultMemoryCapacity = 1024

// MemoryStore keeps sessions in process. They are lost on restart.
type MemoryStore struct {
	cache *cache.LRUCache[Session]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.NewLRUCache[Session](defaultMemoryCapacity, ttl)}
}

// Cleaner exposes the backing cache for periodic expiry sweeps.
func (m *MemoryStore) Cleaner() cache.Cleaner {
	return m.cache
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.cache.SetWithTTL(s.ID, *s, time.Until(s.ExpiresAt))
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}
