package product

import "context"

const StatusActive = "active"

// Snapshot is the read-only view of a product the cart needs: its current
// price in minor units and the stock available right now.
type Snapshot struct {
	ProductID      int64 `json:"product_id"`
	PriceCents     int64 `json:"price_cents"`
	AvailableStock int   `json:"available_stock"`
}

// SnapshotProvider looks up the current snapshot of a product. A missing or
// inactive product fails with apperror ProductNotFound.
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, productID int64) (Snapshot, error)
}
