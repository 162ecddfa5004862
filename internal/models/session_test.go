package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeCartItem(t *testing.T) {
	var cart []CartItem
	cart = MergeCartItem(cart, CartItem{SKU: "sofa", Name: "Sofa", Qty: 1, UnitPrice: 120000})
	cart = MergeCartItem(cart, CartItem{SKU: "sofa", Name: "Sofa", Qty: 2, UnitPrice: 120000})
	cart = MergeCartItem(cart, CartItem{SKU: "sofa", Name: "Sofa (sale)", Qty: 1, UnitPrice: 100000})
	cart = MergeCartItem(cart, CartItem{SKU: "chair", Qty: 0, UnitPrice: 45000})

	assert.Len(t, cart, 2)
	assert.Equal(t, 3, cart[0].Qty)
	assert.Equal(t, int64(460000), CartSubtotal(cart))
	assert.Equal(t, 4, CartUnits(cart))
}

func TestCurrentStep(t *testing.T) {
	s := NewSession("c1")
	assert.Equal(t, StepIdle, s.CurrentStep())

	s.AwaitProof("ORD-1")
	assert.Equal(t, StepWaitProof, s.CurrentStep())
	assert.Equal(t, StepIdle, s.Step)

	s.Step = StepTrackByName
	assert.Equal(t, StepTrackByName, s.CurrentStep())

	s.Step = ""
	s.AwaitingProof = false
	assert.Equal(t, StepIdle, s.CurrentStep())
}

func TestCheckoutSourceLifecycle(t *testing.T) {
	s := NewSession("c1")
	s.AddToCart(CartItem{SKU: "chair", Name: "Chair", Qty: 2, UnitPrice: 45000})
	assert.Equal(t, int64(90000), s.Subtotal())

	s.PendingItem = &CartItem{SKU: "sofa", Name: "Sofa", Qty: 1, UnitPrice: 120000}
	s.Step = StepSelectStreet
	s.DistrictID, s.WardID, s.StreetPage = "kinondoni", "mwenge", 2
	assert.Equal(t, int64(120000), s.Subtotal())

	s.AwaitProof("ORD-1")
	assert.Equal(t, StepIdle, s.Step)
	assert.Empty(t, s.DistrictID)
	assert.Zero(t, s.StreetPage)
	assert.NotNil(t, s.PendingItem)

	s.CompletePurchase()
	assert.Nil(t, s.PendingItem)
	assert.Nil(t, s.Cart)
	assert.False(t, s.AwaitingProof)
	assert.Equal(t, "ORD-1", s.LastOrderRef)
}

func TestResetFlowKeepsCartAndLanguage(t *testing.T) {
	s := NewSession("c1")
	s.Language = LanguageSwahili
	s.AddToCart(CartItem{SKU: "chair", Name: "Chair", Qty: 1, UnitPrice: 45000})
	s.PendingItem = &CartItem{SKU: "sofa", Qty: 1}
	s.Step = StepOutsideRegion
	s.Area = AreaOutside

	s.ResetFlow()
	assert.Equal(t, StepIdle, s.Step)
	assert.Equal(t, AreaUnknown, s.Area)
	assert.Nil(t, s.PendingItem)
	assert.Len(t, s.Cart, 1)
	assert.Equal(t, LanguageSwahili, s.Language)
}

func TestCloneDoesNotAlias(t *testing.T) {
	s := NewSession("c1")
	s.AddToCart(CartItem{SKU: "chair", Qty: 1, UnitPrice: 45000})
	s.PendingItem = &CartItem{SKU: "sofa", Qty: 1}

	s.LastChoices = []string{"checkout", "cart"}

	c := s.Clone()
	c.Cart[0].Qty = 5
	c.PendingItem.Qty = 9
	c.LastChoices[0] = "menu"
	assert.Equal(t, 1, s.Cart[0].Qty)
	assert.Equal(t, 1, s.PendingItem.Qty)
	assert.Equal(t, "checkout", s.LastChoices[0])
	assert.Nil(t, NewSession("c2").Clone().LastChoices)
}

func TestChoice(t *testing.T) {
	s := NewSession("c1")
	s.LastChoices = []string{"prod:sofa", "prod:chair", "cart"}

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1", "prod:sofa", true},
		{" 3 ", "cart", true},
		{"0", "", false},
		{"4", "", false},
		{"-1", "", false},
		{"sofa", "", false},
	}
	for _, tt := range tests {
		got, ok := s.Choice(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLocalizedFallsBackToEnglish(t *testing.T) {
	l := Localized{EN: "Hello"}
	assert.Equal(t, "Hello", l.For(LanguageSwahili))
	assert.Equal(t, "Habari", Localized{EN: "Hello", SW: "Habari"}.For(LanguageSwahili))
}
