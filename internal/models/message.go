package models

import "gorm.io/gorm"

// MessageRecord is the persisted log of every inbound and outbound message
type MessageRecord struct {
	gorm.Model

	// Channel message id; unique so provider redeliveries are not appended twice.
	// Nil for outbound messages and for inbound messages without an id.
	WAMessageID    *string `json:"wa_message_id" gorm:"uniqueIndex"`
	ConversationID string  `json:"conversation_id" gorm:"index;not null"`
	Direction      string  `json:"direction"`
	Type           string  `json:"type"`
	Body           string  `json:"body"`
}

// Message directions
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)
