package cart

import "context"

// Store is the durable storage of carts and their items. Every operation is
// scoped to one cart or one user. Implementations enforce at most one item per
// (cart, product) pair.
type Store interface {
	// FindItem returns nil when the product is not in the cart.
	FindItem(ctx context.Context, cartID string, productID int64) (*CartItem, error)

	// ListItems returns the cart's items in insertion order.
	ListItems(ctx context.Context, cartID string) ([]CartItem, error)

	// Upsert inserts an item without an ID and updates quantity and price of
	// an item with one. An insert racing another writer for the same pair
	// fails with StorageConflict; an update of a vanished item fails with
	// CartItemNotFound.
	Upsert(ctx context.Context, item CartItem) (CartItem, error)

	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, itemID string) error

	DeleteAllForCart(ctx context.Context, cartID string) error

	// DeleteItems removes the listed items of the cart and nothing else.
	DeleteItems(ctx context.Context, cartID string, itemIDs []string) error

	// LockCart runs fn while holding the cart's exclusive drain lock. At most
	// one fn per cart runs at a time; other callers wait or give up with ctx.
	LockCart(ctx context.Context, cartID string, fn func(ctx context.Context) error) error

	// DeleteAllForUser removes the user's cart together with its items.
	DeleteAllForUser(ctx context.Context, userID uint) error

	// ResolveCartForUser returns the user's cart, creating it on first use.
	ResolveCartForUser(ctx context.Context, userID uint) (Cart, error)
}
