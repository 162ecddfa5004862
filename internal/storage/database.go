package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ananth-NQI/dukachat-backend/internal/location"
	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// DatabaseStore persists to a gorm database (postgres in production, sqlite locally)
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Migrate creates or updates the tables
func (s *DatabaseStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.Product{}, &models.Order{}, &models.MessageRecord{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Catalog operations
func (s *DatabaseStore) UpsertProducts(ctx context.Context, products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "parent_sku", "sort_order", "active", "updated_at"}),
	}).Create(&products).Error
	if err != nil {
		return fmt.Errorf("upsert products: %w", err)
	}
	return nil
}

func (s *DatabaseStore) ListProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	err := s.db.WithContext(ctx).
		Where("active = ? AND parent_sku = ?", true, "").
		Order("sort_order, id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *DatabaseStore) ListVariants(ctx context.Context, parentSKU string) ([]*models.Product, error) {
	var products []*models.Product
	err := s.db.WithContext(ctx).
		Where("active = ? AND parent_sku = ?", true, parentSKU).
		Order("sort_order, id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	return products, nil
}

func (s *DatabaseStore) GetProduct(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Where("sku = ?", sku).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Order operations
func (s *DatabaseStore) CreateOrder(ctx context.Context, order *models.Order) error {
	order.NameKey = location.Fold(order.CustomerName)
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *DatabaseStore) UpdateOrder(ctx context.Context, order *models.Order) error {
	order.NameKey = location.Fold(order.CustomerName)
	res := s.db.WithContext(ctx).Save(order)
	if res.Error != nil {
		return fmt.Errorf("update order: %w", res.Error)
	}
	return nil
}

func (s *DatabaseStore) GetOrder(ctx context.Context, ref string) (*models.Order, error) {
	return s.takeOrder(ctx, s.db.Where("ref = ?", ref))
}

func (s *DatabaseStore) LatestOrder(ctx context.Context, customerID string) (*models.Order, error) {
	return s.takeOrder(ctx, s.db.Where("customer_id = ?", customerID).Order("id desc"))
}

func (s *DatabaseStore) takeOrder(ctx context.Context, q *gorm.DB) (*models.Order, error) {
	var o models.Order
	if err := q.WithContext(ctx).Take(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (s *DatabaseStore) FindOrdersByCustomerName(ctx context.Context, name string, limit int) ([]*models.Order, error) {
	key := location.Fold(name)
	if key == "" {
		return nil, nil
	}
	q := s.db.WithContext(ctx).Where("name_key LIKE ?", "%"+key+"%").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var orders []*models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	return orders, nil
}

// Message log operations
func (s *DatabaseStore) SaveMessage(ctx context.Context, rec *models.MessageRecord) (bool, error) {
	q := s.db.WithContext(ctx)
	if rec.WAMessageID != nil {
		q = q.Clauses(clause.OnConflict{DoNothing: true})
	}
	res := q.Create(rec)
	if res.Error != nil {
		return false, fmt.Errorf("save message: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *DatabaseStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]*models.MessageRecord, error) {
	q := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []*models.MessageRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	reverse(recs)
	return recs, nil
}
