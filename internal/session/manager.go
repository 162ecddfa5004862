package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// Manager gives the flow engine atomic per-customer access to a Store.
// Updates for the same customer never interleave; different customers run
// in parallel.
type Manager struct {
	store Store
	locks *keyedMutex
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

// Get returns the customer's session, or a fresh Idle one. It never returns nil.
func (m *Manager) Get(ctx context.Context, customerID string) (*models.Session, error) {
	s, err := m.store.Get(ctx, customerID)
	if errors.Is(err, ErrNotFound) {
		return models.NewSession(customerID), nil
	}
	if err != nil {
		return models.NewSession(customerID), err
	}
	return s, nil
}

// Put stores the session as is
func (m *Manager) Put(ctx context.Context, customerID string, s *models.Session) error {
	unlock := m.locks.Lock(customerID)
	defer unlock()
	return m.store.Put(ctx, customerID, s)
}

// Update runs fn on the customer's session under the customer's lock and
// stores the result. When fn fails nothing is written.
func (m *Manager) Update(ctx context.Context, customerID string, fn func(*models.Session) error) (*models.Session, error) {
	unlock := m.locks.Lock(customerID)
	defer unlock()
	return m.update(ctx, customerID, fn)
}

// UpdateThen is Update followed by then, still under the customer's lock, so
// side effects for one customer happen in the order of their updates. then
// also runs when storing failed; it does not run when fn fails.
func (m *Manager) UpdateThen(ctx context.Context, customerID string, fn func(*models.Session) error, then func(*models.Session)) error {
	unlock := m.locks.Lock(customerID)
	defer unlock()

	s, err := m.update(ctx, customerID, fn)
	if s != nil && then != nil {
		then(s)
	}
	return err
}

func (m *Manager) update(ctx context.Context, customerID string, fn func(*models.Session) error) (*models.Session, error) {
	s, err := m.Get(ctx, customerID)
	if err != nil {
		// A broken backend read must not wedge the customer: start over from Idle.
		log.Printf("session read for %s failed, starting fresh: %v", customerID, err)
	}
	s = s.Clone()
	if s.CustomerID == "" {
		s.CustomerID = customerID
	}

	if err := fn(s); err != nil {
		return nil, err
	}

	s.UpdatedAt = m.now()
	if err := m.store.Put(ctx, customerID, s); err != nil {
		return s, fmt.Errorf("store session for %s: %w", customerID, err)
	}
	return s, nil
}

// Sweep evicts sessions idle for longer than ttl, if the store needs it
func (m *Manager) Sweep(ctx context.Context, ttl time.Duration) (int, error) {
	sw, ok := m.store.(Sweeper)
	if !ok || ttl <= 0 {
		return 0, nil
	}
	return sw.DeleteIdle(ctx, m.now().Add(-ttl))
}

// Backend names the store implementation for health output
func (m *Manager) Backend() string {
	switch m.store.(type) {
	case *RedisStore:
		return "redis"
	case *MemoryStore:
		return "memory"
	default:
		return fmt.Sprintf("%T", m.store)
	}
}
