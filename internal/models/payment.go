package models

// PaymentMethod is a configured way to pay, offered after checkout
type PaymentMethod struct {
	ID           string    `json:"id" toml:"id"`
	Label        string    `json:"label" toml:"label"`
	Instructions Localized `json:"instructions" toml:"instructions"`
}
