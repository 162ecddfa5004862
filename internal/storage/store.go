package storage

import (
	"context"
	"errors"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// ErrNotFound is returned when a product or order does not exist
var ErrNotFound = errors.New("record not found")

// Store defines the interface for storage operations
type Store interface {
	// Catalog operations
	UpsertProducts(ctx context.Context, products []*models.Product) error
	ListProducts(ctx context.Context) ([]*models.Product, error)
	ListVariants(ctx context.Context, parentSKU string) ([]*models.Product, error)
	GetProduct(ctx context.Context, sku string) (*models.Product, error)

	// Order operations
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, ref string) (*models.Order, error)
	LatestOrder(ctx context.Context, customerID string) (*models.Order, error)
	FindOrdersByCustomerName(ctx context.Context, name string, limit int) ([]*models.Order, error)

	// Message log operations. SaveMessage reports false when a record with
	// the same channel message id already exists.
	SaveMessage(ctx context.Context, rec *models.MessageRecord) (bool, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]*models.MessageRecord, error)
}
