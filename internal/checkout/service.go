// Package checkout turns a user's cart into a recorded order.
package checkout

import (
	"context"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/cart"
	"marketcart-be/internal/inventory"
	"marketcart-be/internal/logger"
	"marketcart-be/internal/metrics"
	"marketcart-be/internal/order"
	"marketcart-be/internal/product"

	"go.uber.org/zap"
)

type Receipt struct {
	OrderID string
	Items   []cart.CartItem
}

type Service interface {
	Checkout(ctx context.Context, userID uint) (Receipt, error)
}

type service struct {
	carts    cart.Service
	products product.SnapshotProvider
	orders   order.Recorder
}

func NewService(carts cart.Service, products product.SnapshotProvider, orders order.Recorder) Service {
	return &service{carts: carts, products: products, orders: orders}
}

// Checkout records the cart as an order and empties it. Stock is validated
// again here because the cart only ever held a point-in-time check.
func (s *service) Checkout(ctx context.Context, userID uint) (Receipt, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
	)

	c, err := s.carts.CartFor(ctx, userID)
	if err != nil {
		return Receipt{}, err
	}

	var orderID string
	items, err := s.carts.DrainForCheckout(ctx, c.ID, func(ctx context.Context, items []cart.CartItem) error {
		if len(items) == 0 {
			return apperror.New(apperror.KindCartEmpty, "")
		}

		for _, it := range items {
			snap, err := s.products.GetSnapshot(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if err := inventory.Validate(snap, it.Quantity).Err(); err != nil {
				return err
			}
		}

		id, err := s.orders.RecordOrder(ctx, userID, order.FromCartItems(items))
		if err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if err != nil {
		log.Info("checkout rejected", zap.Error(err))
		return Receipt{}, err
	}

	metrics.CheckoutsCompleted.Inc()
	log.Info("checkout completed",
		zap.String("order_id", orderID),
		zap.Int("items", len(items)),
	)
	return Receipt{OrderID: orderID, Items: items}, nil
}
