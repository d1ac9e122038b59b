package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   *ConversationSession
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. A zero ttl never expires entries.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*ConversationSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.sessions, userID)
		return nil, false, nil
	}
	return e.session.clone(), true, nil
}

func (m *MemoryStore) Put(_ context.Context, userID string, s *ConversationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{session: s.clone()}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.sessions[userID] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Count reports the sessions that have not expired.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for _, e := range m.sessions {
		if e.expiresAt.IsZero() || !now.After(e.expiresAt) {
			n++
		}
	}
	return n, nil
}

// Len reports how many sessions are held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
