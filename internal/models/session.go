package models

import (
	"strconv"
	"strings"
	"time"
)

// Language is the customer's preferred reply language
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSwahili Language = "sw"
)

// Toggle returns the other supported language
func (l Language) Toggle() Language {
	if l == LanguageSwahili {
		return LanguageEnglish
	}
	return LanguageSwahili
}

// FlowStep is the customer's position inside the checkout conversation
type FlowStep string

const (
	StepIdle            FlowStep = "idle"
	StepAskDeliveryArea FlowStep = "ask_delivery_area"
	StepAskDeliveryMode FlowStep = "ask_delivery_mode"

	// Outside the service area: name > phone > region, then a flat fee
	StepOutsideName   FlowStep = "outside_name"
	StepOutsidePhone  FlowStep = "outside_phone"
	StepOutsideRegion FlowStep = "outside_region"

	// Inside the service area with delivery: name > phone > district > ward > street or GPS
	StepDeliveryName   FlowStep = "delivery_name"
	StepDeliveryPhone  FlowStep = "delivery_phone"
	StepSelectDistrict FlowStep = "select_district"
	StepSelectWard     FlowStep = "select_ward"
	StepSelectStreet   FlowStep = "select_street"
	StepAwaitGPS       FlowStep = "await_gps"

	StepWaitProof   FlowStep = "wait_proof"
	StepTrackByName FlowStep = "track_by_name"
)

// AllSteps lists every flow step, in conversation order
var AllSteps = []FlowStep{
	StepIdle,
	StepAskDeliveryArea,
	StepAskDeliveryMode,
	StepOutsideName,
	StepOutsidePhone,
	StepOutsideRegion,
	StepDeliveryName,
	StepDeliveryPhone,
	StepSelectDistrict,
	StepSelectWard,
	StepSelectStreet,
	StepAwaitGPS,
	StepWaitProof,
	StepTrackByName,
}

// DeliveryArea records which checkout branch the customer picked
type DeliveryArea string

const (
	AreaUnknown DeliveryArea = ""
	AreaInside  DeliveryArea = "inside"
	AreaOutside DeliveryArea = "outside"
)

// Contact holds the fields captured during checkout
type Contact struct {
	Name   string `json:"name,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Region string `json:"region,omitempty"`
}

// Session is the per-customer conversation state
type Session struct {
	CustomerID    string       `json:"customer_id"`
	Language      Language     `json:"language"`
	Step          FlowStep     `json:"step"`
	Cart          []CartItem   `json:"cart,omitempty"`
	PendingItem   *CartItem    `json:"pending_item,omitempty"` // "buy now" item, checked out alone
	Contact       Contact      `json:"contact"`
	Area          DeliveryArea `json:"area,omitempty"`
	DistrictID    string       `json:"district_id,omitempty"`
	WardID        string       `json:"ward_id,omitempty"`
	StreetPage    int          `json:"street_page"`
	AwaitingProof bool         `json:"awaiting_proof"`
	LastOrderRef  string       `json:"last_order_ref,omitempty"`
	// Reply ids of the last choices shown, in display order, so a typed
	// number can stand in for a tap
	LastChoices []string  `json:"last_choices,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSession returns the Idle baseline for a customer
func NewSession(customerID string) *Session {
	return &Session{
		CustomerID: customerID,
		Language:   LanguageEnglish,
		Step:       StepIdle,
		UpdatedAt:  time.Now(),
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the stored value
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Cart != nil {
		out.Cart = make([]CartItem, len(s.Cart))
		copy(out.Cart, s.Cart)
	}
	if s.PendingItem != nil {
		item := *s.PendingItem
		out.PendingItem = &item
	}
	if s.LastChoices != nil {
		out.LastChoices = append([]string(nil), s.LastChoices...)
	}
	return &out
}

// Choice maps a typed option number onto the reply id shown at that position
func (s *Session) Choice(text string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > len(s.LastChoices) {
		return "", false
	}
	return s.LastChoices[n-1], true
}

// CurrentStep reports the effective step. Proof-of-payment is tracked apart
// from the checkout flow, so an Idle session awaiting proof acts as WaitProof.
func (s *Session) CurrentStep() FlowStep {
	if s.Step == "" {
		return StepIdle
	}
	if s.Step == StepIdle && s.AwaitingProof {
		return StepWaitProof
	}
	return s.Step
}

// AddToCart merges the item into the cart (same sku and unit price sum their qty)
func (s *Session) AddToCart(item CartItem) {
	s.Cart = MergeCartItem(s.Cart, item)
}

// CheckoutItems returns what the current checkout operates on: the pending
// "buy now" item alone when set, otherwise the cart.
func (s *Session) CheckoutItems() []CartItem {
	if s.PendingItem != nil {
		return []CartItem{*s.PendingItem}
	}
	return s.Cart
}

// Subtotal sums the checkout items
func (s *Session) Subtotal() int64 {
	return CartSubtotal(s.CheckoutItems())
}

// ResetFlow returns the session to Idle, dropping the in-flight checkout
// state. The cart and language survive.
func (s *Session) ResetFlow() {
	s.clearFlow()
	s.PendingItem = nil
	s.AwaitingProof = false
}

// AwaitProof ends the checkout conversation for an order that still needs
// payment. The checkout source is kept until proof arrives.
func (s *Session) AwaitProof(orderRef string) {
	s.clearFlow()
	s.AwaitingProof = true
	s.LastOrderRef = orderRef
}

// CompletePurchase clears the checkout source after proof of payment
func (s *Session) CompletePurchase() {
	s.ResetFlow()
	s.Cart = nil
}

func (s *Session) clearFlow() {
	s.Step = StepIdle
	s.Area = AreaUnknown
	s.DistrictID = ""
	s.WardID = ""
	s.StreetPage = 0
}
