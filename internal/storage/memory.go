package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ananth-NQI/dukachat-backend/internal/location"
	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// MemoryStore holds all data in memory for development and tests
type MemoryStore struct {
	products map[string]*models.Product
	orders   []*models.Order
	messages []*models.MessageRecord
	seenIDs  map[string]bool

	// Mutexes for thread safety
	productMu sync.RWMutex
	orderMu   sync.RWMutex
	messageMu sync.RWMutex

	// Counters for ID generation
	productCounter uint
	orderCounter   uint
	messageCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*models.Product),
		seenIDs:  make(map[string]bool),
	}
}

// Catalog operations
func (m *MemoryStore) UpsertProducts(_ context.Context, products []*models.Product) error {
	m.productMu.Lock()
	defer m.productMu.Unlock()

	now := time.Now()
	for _, p := range products {
		cp := *p
		cp.SKU = strings.TrimSpace(cp.SKU)
		cp.ParentSKU = strings.TrimSpace(cp.ParentSKU)
		cp.Name = strings.TrimSpace(cp.Name)
		if existing, ok := m.products[cp.SKU]; ok {
			cp.ID = existing.ID
			cp.CreatedAt = existing.CreatedAt
		} else {
			m.productCounter++
			cp.ID = m.productCounter
			cp.CreatedAt = now
		}
		cp.UpdatedAt = now
		m.products[cp.SKU] = &cp
	}
	return nil
}

func (m *MemoryStore) ListProducts(_ context.Context) ([]*models.Product, error) {
	return m.filterProducts(func(p *models.Product) bool { return p.ParentSKU == "" }), nil
}

func (m *MemoryStore) ListVariants(_ context.Context, parentSKU string) ([]*models.Product, error) {
	return m.filterProducts(func(p *models.Product) bool { return p.ParentSKU == parentSKU }), nil
}

func (m *MemoryStore) filterProducts(keep func(*models.Product) bool) []*models.Product {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	var out []*models.Product
	for _, p := range m.products {
		if p.Active && keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *MemoryStore) GetProduct(_ context.Context, sku string) (*models.Product, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	p, ok := m.products[sku]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// Order operations
func (m *MemoryStore) CreateOrder(_ context.Context, order *models.Order) error {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	m.orderCounter++
	order.ID = m.orderCounter
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	order.NameKey = location.Fold(order.CustomerName)
	m.orders = append(m.orders, copyOrder(order))
	return nil
}

func (m *MemoryStore) UpdateOrder(_ context.Context, order *models.Order) error {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	for i, o := range m.orders {
		if o.Ref == order.Ref {
			order.UpdatedAt = time.Now()
			order.NameKey = location.Fold(order.CustomerName)
			m.orders[i] = copyOrder(order)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) GetOrder(_ context.Context, ref string) (*models.Order, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	for _, o := range m.orders {
		if o.Ref == ref {
			return copyOrder(o), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) LatestOrder(_ context.Context, customerID string) (*models.Order, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].CustomerID == customerID {
			return copyOrder(m.orders[i]), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindOrdersByCustomerName(_ context.Context, name string, limit int) ([]*models.Order, error) {
	key := location.Fold(name)
	if key == "" {
		return nil, nil
	}

	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	var out []*models.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		if strings.Contains(m.orders[i].NameKey, key) {
			out = append(out, copyOrder(m.orders[i]))
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Message log operations
func (m *MemoryStore) SaveMessage(_ context.Context, rec *models.MessageRecord) (bool, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	if rec.WAMessageID != nil {
		if m.seenIDs[*rec.WAMessageID] {
			return false, nil
		}
		m.seenIDs[*rec.WAMessageID] = true
	}
	m.messageCounter++
	rec.ID = m.messageCounter
	rec.CreatedAt = time.Now()
	cp := *rec
	m.messages = append(m.messages, &cp)
	return true, nil
}

func (m *MemoryStore) ListMessages(_ context.Context, conversationID string, limit int) ([]*models.MessageRecord, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	var out []*models.MessageRecord
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].ConversationID != conversationID {
			continue
		}
		cp := *m.messages[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	reverse(out)
	return out, nil
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.CartItem(nil), o.Items...)
	return &cp
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
