package cart

import (
	"time"

	"marketcart-be/internal/product"
)

// Cart is the per-user container of line items. Each user owns at most one.
type Cart struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItem is one line of a cart. UnitPriceCents is the price captured when
// the line was created and is not re-synced with the catalog afterwards.
type CartItem struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cart_id"`
	ProductID      int64     `json:"product_id"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewCartItemFromSnapshot builds an unsaved line for cartID, stamping the
// snapshot's current price. The store assigns ID and timestamps.
func NewCartItemFromSnapshot(cartID string, snap product.Snapshot, quantity int) CartItem {
	return CartItem{
		CartID:         cartID,
		ProductID:      snap.ProductID,
		Quantity:       quantity,
		UnitPriceCents: snap.PriceCents,
	}
}

// WithQuantity returns a copy with quantity replaced. The price is kept.
func (i CartItem) WithQuantity(quantity int) CartItem {
	i.Quantity = quantity
	return i
}

func (i CartItem) SubtotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

// CartView is the read-only projection returned by ListCart.
type CartView struct {
	Cart  Cart
	Items []CartItem
}

func (v CartView) TotalCents() int64 {
	var total int64
	for _, it := range v.Items {
		total += it.SubtotalCents()
	}
	return total
}

func (v CartView) ItemCount() int {
	n := 0
	for _, it := range v.Items {
		n += it.Quantity
	}
	return n
}
