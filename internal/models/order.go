package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is created when a checkout reaches its terminal step
type Order struct {
	gorm.Model

	Ref          string     `json:"ref" gorm:"uniqueIndex;not null"`
	CustomerID   string     `json:"customer_id" gorm:"index;not null"`
	CustomerName string     `json:"customer_name"`
	NameKey      string     `json:"-" gorm:"index"` // folded CustomerName for lookups
	Phone        string     `json:"phone"`
	Region       string     `json:"region"`
	DeliveryMode string     `json:"delivery_mode"` // "delivery", "pickup", "outside"
	Location     string     `json:"location"`      // district::ward[::street]
	Items        []CartItem `json:"items" gorm:"serializer:json"`

	Subtotal int64 `json:"subtotal"`
	Fee      int64 `json:"fee"`
	Total    int64 `json:"total"`

	DistanceKm      float64 `json:"distance_km"`
	QuoteMethod     string  `json:"quote_method"`
	QuoteConfidence float64 `json:"quote_confidence"`

	Status        string     `json:"status" gorm:"index"`
	PaymentMethod string     `json:"payment_method"`
	PayerName     string     `json:"payer_name"`
	ProofMediaID  string     `json:"proof_media_id"`
	ProofAt       *time.Time `json:"proof_at"`
}

// Order status and delivery mode constants
const (
	OrderStatusAwaitingPayment = "awaiting_payment"
	OrderStatusPickupPending   = "pickup_pending"
	OrderStatusProofSubmitted  = "proof_submitted"

	DeliveryModeDelivery = "delivery"
	DeliveryModePickup   = "pickup"
	DeliveryModeOutside  = "outside"
)
