package cart

import (
	"context"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/inventory"
	"marketcart-be/internal/logger"
	"marketcart-be/internal/metrics"
	"marketcart-be/internal/product"

	"go.uber.org/zap"
)

// Handoff receives the items of a cart being drained. A nil return means the
// items are durably recorded downstream and may be deleted.
type Handoff func(ctx context.Context, items []CartItem) error

// Service defines the business logic for carts.
type Service interface {
	CartFor(ctx context.Context, userID uint) (Cart, error)
	AddItem(ctx context.Context, userID uint, productID int64, quantity int) (*CartItem, error)
	// UpdateQuantity returns nil when the new quantity removed the item.
	UpdateQuantity(ctx context.Context, cartID string, productID int64, quantity int) (*CartItem, error)
	RemoveItem(ctx context.Context, cartID string, productID int64) error
	ListCart(ctx context.Context, userID uint) (CartView, error)
	DrainForCheckout(ctx context.Context, cartID string, handoff Handoff) ([]CartItem, error)
	ClearCart(ctx context.Context, userID uint) error
}

type service struct {
	store    Store
	products product.SnapshotProvider
}

func NewService(store Store, products product.SnapshotProvider) Service {
	return &service{store: store, products: products}
}

func (s *service) CartFor(ctx context.Context, userID uint) (Cart, error) {
	c, err := s.store.ResolveCartForUser(ctx, userID)
	if err != nil {
		return Cart{}, apperror.FromError(err)
	}
	return c, nil
}

// AddItem creates the (cart, product) line. A product already in the cart is
// rejected rather than merged, so the caller can switch to UpdateQuantity.
func (s *service) AddItem(ctx context.Context, userID uint, productID int64, quantity int) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)

	if quantity < 1 {
		return nil, apperror.InvalidQuantity(quantity)
	}

	c, err := s.CartFor(ctx, userID)
	if err != nil {
		log.Error("failed to resolve cart", zap.Error(err))
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		item, err := s.addOnce(ctx, c.ID, productID, quantity)
		if err == nil {
			metrics.ItemsAdded.Inc()
			log.Info("item added", zap.String("cart_item_id", item.ID))
			return item, nil
		}
		if !apperror.Retryable(err) {
			if apperror.IsKind(err, apperror.KindProductAlreadyInCart) {
				metrics.DuplicateAdds.Inc()
			}
			return nil, err
		}
		metrics.StorageConflicts.Inc()
		if attempt >= maxConflictRetries {
			log.Info("lost uniqueness race twice")
			return nil, s.alreadyInCart(ctx, c.ID, productID)
		}
		log.Info("storage conflict, retrying", zap.Int("attempt", attempt+1))
	}
}

func (s *service) addOnce(ctx context.Context, cartID string, productID int64, quantity int) (*CartItem, error) {
	existing, err := s.store.FindItem(ctx, cartID, productID)
	if err != nil {
		return nil, apperror.FromError(err)
	}
	if existing != nil {
		return nil, apperror.ProductAlreadyInCart(productID, *existing)
	}

	snap, err := s.products.GetSnapshot(ctx, productID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	if err := inventory.Validate(snap, quantity).Err(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, apperror.FromError(err)
	}

	created, err := s.store.Upsert(ctx, NewCartItemFromSnapshot(cartID, snap, quantity))
	if err != nil {
		return nil, apperror.FromError(err)
	}
	return &created, nil
}

func (s *service) alreadyInCart(ctx context.Context, cartID string, productID int64) error {
	existing, err := s.store.FindItem(ctx, cartID, productID)
	if err != nil {
		return apperror.FromError(err)
	}
	if existing == nil {
		return apperror.ProductAlreadyInCart(productID, nil)
	}
	return apperror.ProductAlreadyInCart(productID, *existing)
}

func (s *service) UpdateQuantity(ctx context.Context, cartID string, productID int64, quantity int) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateQuantity"),
		zap.String("cart_id", cartID),
		zap.Int64("product_id", productID),
	)

	if cartID == "" {
		return nil, apperror.Wrap(apperror.KindInvalidRequest, ErrEmptyCartID)
	}

	existing, err := s.store.FindItem(ctx, cartID, productID)
	if err != nil {
		return nil, apperror.FromError(err)
	}
	if existing == nil {
		return nil, apperror.CartItemNotFound(cartID, productID)
	}

	if quantity <= 0 {
		if err := s.deleteItem(ctx, existing.ID); err != nil {
			return nil, err
		}
		log.Info("item removed by zero quantity")
		return nil, nil
	}

	snap, err := s.products.GetSnapshot(ctx, productID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	if err := inventory.Validate(snap, quantity).Err(); err != nil {
		log.Info("quantity rejected", zap.Int("requested", quantity), zap.Int("available", snap.AvailableStock))
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, apperror.FromError(err)
	}

	updated, err := s.store.Upsert(ctx, existing.WithQuantity(quantity))
	if err != nil {
		return nil, apperror.FromError(err)
	}
	return &updated, nil
}

func (s *service) RemoveItem(ctx context.Context, cartID string, productID int64) error {
	if cartID == "" {
		return apperror.Wrap(apperror.KindInvalidRequest, ErrEmptyCartID)
	}

	existing, err := s.store.FindItem(ctx, cartID, productID)
	if err != nil {
		return apperror.FromError(err)
	}
	if existing == nil {
		return nil
	}
	return s.deleteItem(ctx, existing.ID)
}

func (s *service) deleteItem(ctx context.Context, itemID string) error {
	if err := ctx.Err(); err != nil {
		return apperror.FromError(err)
	}
	if err := s.store.Delete(ctx, itemID); err != nil {
		return apperror.FromError(err)
	}
	return nil
}

func (s *service) ListCart(ctx context.Context, userID uint) (CartView, error) {
	c, err := s.CartFor(ctx, userID)
	if err != nil {
		return CartView{}, err
	}

	items, err := s.store.ListItems(ctx, c.ID)
	if err != nil {
		return CartView{}, apperror.FromError(err)
	}

	return CartView{Cart: c, Items: items}, nil
}

// DrainForCheckout hands the cart's items to handoff once and removes exactly
// those items only after handoff succeeds. Drains of one cart are serialized,
// so a second drain sees the cart as already emptied. Items added while the
// handoff runs stay in the cart.
func (s *service) DrainForCheckout(ctx context.Context, cartID string, handoff Handoff) ([]CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DrainForCheckout"),
		zap.String("cart_id", cartID),
	)

	if cartID == "" {
		return nil, apperror.Wrap(apperror.KindInvalidRequest, ErrEmptyCartID)
	}

	var drained []CartItem
	err := s.store.LockCart(ctx, cartID, func(ctx context.Context) error {
		items, err := s.store.ListItems(ctx, cartID)
		if err != nil {
			return err
		}

		if err := handoff(ctx, items); err != nil {
			log.Warn("handoff failed, cart left intact", zap.Error(err))
			return err
		}

		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}

		// The order is already recorded; a caller hanging up must not leave the
		// drained items behind.
		if err := s.store.DeleteItems(context.WithoutCancel(ctx), cartID, ids); err != nil {
			log.Error("failed to empty drained cart", zap.Error(err))
			return err
		}

		drained = items
		return nil
	})
	if err != nil {
		return nil, apperror.FromError(err)
	}

	metrics.CartsDrained.Inc()
	log.Info("cart drained", zap.Int("items", len(drained)))
	return drained, nil
}

func (s *service) ClearCart(ctx context.Context, userID uint) error {
	c, err := s.CartFor(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAllForCart(ctx, c.ID); err != nil {
		return apperror.FromError(err)
	}
	return nil
}
