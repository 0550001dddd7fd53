package state

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions for the lifetime of the process.
// Load and Save copy sessions so callers never share history slices.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*Session, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if err := prepareSave(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
