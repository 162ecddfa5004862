package models

import "time"

// EventKind discriminates the normalized inbound event union
type EventKind string

const (
	EventText        EventKind = "text"
	EventInteractive EventKind = "interactive"
	EventLocation    EventKind = "location"
)

// AllEventKinds lists the members of the inbound union
var AllEventKinds = []EventKind{EventText, EventInteractive, EventLocation}

// LocationPin is a shared GPS location
type LocationPin struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name,omitempty"`
	Address string  `json:"address,omitempty"`
}

// InboundEvent is a channel message normalized at ingress. Exactly one of
// Text, ReplyID or Pin is meaningful, selected by Kind.
type InboundEvent struct {
	CustomerID  string       `json:"customer_id"`
	MessageID   string       `json:"message_id,omitempty"`
	ProfileName string       `json:"profile_name,omitempty"`
	Kind        EventKind    `json:"kind"`
	Text        string       `json:"text,omitempty"`
	ReplyID     string       `json:"reply_id,omitempty"`
	ReplyTitle  string       `json:"reply_title,omitempty"`
	Pin         *LocationPin `json:"pin,omitempty"`
	ReceivedAt  time.Time    `json:"received_at"`
}

// TextEvent builds a free-text event
func TextEvent(customerID, text string) InboundEvent {
	return InboundEvent{CustomerID: customerID, Kind: EventText, Text: text, ReceivedAt: time.Now()}
}

// ReplyEvent builds an interactive button/list reply event
func ReplyEvent(customerID, replyID string) InboundEvent {
	return InboundEvent{CustomerID: customerID, Kind: EventInteractive, ReplyID: replyID, ReceivedAt: time.Now()}
}

// PinEvent builds a location-pin event
func PinEvent(customerID string, lat, lon float64) InboundEvent {
	return InboundEvent{
		CustomerID: customerID,
		Kind:       EventLocation,
		Pin:        &LocationPin{Lat: lat, Lon: lon},
		ReceivedAt: time.Now(),
	}
}
