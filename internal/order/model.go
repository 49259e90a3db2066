package order

import (
	"time"

	"marketcart-be/internal/cart"
)

type OrderStatus string

const (
	StatusPending  OrderStatus = "PENDING"
	StatusAccepted OrderStatus = "ACCEPTED"
	StatusRejected OrderStatus = "REJECTED"
	StatusCanceled OrderStatus = "CANCELED"
)

type Order struct {
	ID         string
	UserID     uint
	TotalCents int64
	Status     OrderStatus
	CreatedAt  time.Time
	Items      []LineItem
}

// LineItem is a priced order line. UnitPriceCents is the price the cart
// captured, not the catalog price at order time.
type LineItem struct {
	ProductID      int64
	Quantity       int
	UnitPriceCents int64
}

func (l LineItem) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

func FromCartItems(items []cart.CartItem) []LineItem {
	lines := make([]LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, LineItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	return lines
}

func totalCents(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.SubtotalCents()
	}
	return total
}
