// Package mapper converts domain values into the JSON shapes served by the API.
package mapper

import (
	"time"

	"marketcart-be/internal/cart"
	"marketcart-be/internal/checkout"
)

type CartItemResponse struct {
	ID             string `json:"id"`
	ProductID      int64  `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type CartResponse struct {
	ID         string             `json:"id"`
	Items      []CartItemResponse `json:"items"`
	ItemCount  int                `json:"item_count"`
	TotalCents int64              `json:"total_cents"`
	UpdatedAt  string             `json:"updated_at"`
}

type ReceiptResponse struct {
	OrderID    string             `json:"order_id"`
	Items      []CartItemResponse `json:"items"`
	TotalCents int64              `json:"total_cents"`
}

func MapCartItem(ci cart.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:             ci.ID,
		ProductID:      ci.ProductID,
		Quantity:       ci.Quantity,
		UnitPriceCents: ci.UnitPriceCents,
		SubtotalCents:  ci.SubtotalCents(),
		CreatedAt:      ci.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      ci.UpdatedAt.Format(time.RFC3339),
	}
}

func MapCartItems(items []cart.CartItem) []CartItemResponse {
	res := make([]CartItemResponse, 0, len(items))
	for _, it := range items {
		res = append(res, MapCartItem(it))
	}
	return res
}

func MapCartView(v cart.CartView) CartResponse {
	return CartResponse{
		ID:         v.Cart.ID,
		Items:      MapCartItems(v.Items),
		ItemCount:  v.ItemCount(),
		TotalCents: v.TotalCents(),
		UpdatedAt:  v.Cart.UpdatedAt.Format(time.RFC3339),
	}
}

func MapReceipt(r checkout.Receipt) ReceiptResponse {
	items := MapCartItems(r.Items)
	var total int64
	for _, it := range items {
		total += it.SubtotalCents
	}
	return ReceiptResponse{
		OrderID:    r.OrderID,
		Items:      items,
		TotalCents: total,
	}
}
