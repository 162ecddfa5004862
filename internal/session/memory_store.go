package session

import (
	"context"
	"sync"
	"time"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
	}
}

func (m *MemoryStore) Get(_ context.Context, customerID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[customerID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, customerID string, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[customerID] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, customerID)
	return nil
}

// Len returns the number of stored sessions
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// DeleteIdle drops sessions not updated since before
func (m *MemoryStore) DeleteIdle(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(before) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}
