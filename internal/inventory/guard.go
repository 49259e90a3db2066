// Package inventory decides whether a cart may record a quantity of a product.
// It never reserves or decrements stock; that belongs to the inventory system
// and any checkout step that needs exactness must validate again.
package inventory

import (
	"marketcart-be/internal/apperror"
	"marketcart-be/internal/product"
)

// Decision is the outcome of Validate.
type Decision struct {
	Accepted  bool
	ProductID int64
	Requested int
	Available int
}

// Validate rejects when requested exceeds the snapshot's available stock.
func Validate(snap product.Snapshot, requested int) Decision {
	return Decision{
		Accepted:  requested <= snap.AvailableStock,
		ProductID: snap.ProductID,
		Requested: requested,
		Available: snap.AvailableStock,
	}
}

// Err is nil for an accepted decision and InsufficientInventory otherwise.
func (d Decision) Err() error {
	if d.Accepted {
		return nil
	}
	return apperror.InsufficientInventory(d.ProductID, d.Requested, d.Available)
}
