package models

import (
	"strings"

	"gorm.io/gorm"
)

// Product is a catalog entry shown in the conversational menu
type Product struct {
	gorm.Model

	SKU         string `json:"sku" gorm:"uniqueIndex;not null"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	Price       int64  `json:"price"`                   // minor units
	ParentSKU   string `json:"parent_sku" gorm:"index"` // set on variants
	SortOrder   int    `json:"sort_order" gorm:"default:0"`
	Active      bool   `json:"active"`
}

// BeforeSave normalizes identifiers
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.SKU = strings.TrimSpace(p.SKU)
	p.ParentSKU = strings.TrimSpace(p.ParentSKU)
	p.Name = strings.TrimSpace(p.Name)
	return nil
}

// IsVariant reports whether the product hangs under a parent
func (p *Product) IsVariant() bool {
	return p.ParentSKU != ""
}

// AsCartItem snapshots the product into a cart line
func (p *Product) AsCartItem(qty int) CartItem {
	return CartItem{SKU: p.SKU, Name: p.Name, Qty: qty, UnitPrice: p.Price}
}
