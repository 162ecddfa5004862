package session

import (
	"context"
	"errors"
	"time"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// ErrNotFound is returned by a Store when no session exists for the customer
var ErrNotFound = errors.New("session not found")

// Store persists sessions by customer id. Implementations need not lock
// per key; Manager serializes read-modify-write for a customer.
type Store interface {
	Get(ctx context.Context, customerID string) (*models.Session, error)
	Put(ctx context.Context, customerID string, s *models.Session) error
	Delete(ctx context.Context, customerID string) error
}

// Sweeper is implemented by stores that need external eviction
type Sweeper interface {
	DeleteIdle(ctx context.Context, before time.Time) (int, error)
}
