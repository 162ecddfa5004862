package models

// CartItem is one line of a cart. Name is a snapshot taken when the item was added.
type CartItem struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"unit_price"`
}

// LineTotal returns qty * unit price
func (c CartItem) LineTotal() int64 {
	return int64(c.Qty) * c.UnitPrice
}

// MergeCartItem appends item to cart, summing qty into an existing line with
// the same sku and unit price. Non-positive quantities are ignored.
func MergeCartItem(cart []CartItem, item CartItem) []CartItem {
	if item.Qty <= 0 || item.UnitPrice < 0 {
		return cart
	}
	for i := range cart {
		if cart[i].SKU == item.SKU && cart[i].UnitPrice == item.UnitPrice {
			cart[i].Qty += item.Qty
			return cart
		}
	}
	return append(cart, item)
}

// CartSubtotal sums line totals
func CartSubtotal(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// CartUnits counts units across lines
func CartUnits(items []CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Qty
	}
	return n
}
