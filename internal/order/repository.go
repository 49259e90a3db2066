package order

import (
	"context"
	"database/sql"
	"time"

	"marketcart-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder durably records an order for a user and returns its id.
type Recorder interface {
	RecordOrder(ctx context.Context, userID uint, items []LineItem) (string, error)
}

type repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) Recorder {
	return &repository{db: db, now: time.Now}
}

func (r *repository) RecordOrder(ctx context.Context, userID uint, items []LineItem) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "RecordOrder"),
		zap.Int("items", len(items)),
	)

	if userID == 0 {
		return "", ErrInvalidUser
	}
	if len(items) == 0 {
		return "", ErrNoItems
	}

	o := Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		TotalCents: totalCents(items),
		Status:     StatusPending,
		CreatedAt:  r.now().UTC(),
		Items:      items,
	}

	if err := r.createOrderTx(ctx, &o); err != nil {
		log.Error("failed to record order", zap.Error(err))
		return "", err
	}

	log.Info("order recorded",
		zap.String("order_id", o.ID),
		zap.Int64("total_cents", o.TotalCents),
	)
	return o.ID, nil
}

func (r *repository) createOrderTx(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Insert order
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, status, total_cents, created_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		o.ID,
		o.UserID,
		o.Status,
		o.TotalCents,
		o.CreatedAt,
	)
	if err != nil {
		return err
	}

	// 2. Insert order items
	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, quantity,
				unit_price_cents, subtotal_cents
			) VALUES ($1,$2,$3,$4,$5)
		`,
			o.ID,
			item.ProductID,
			item.Quantity,
			item.UnitPriceCents,
			item.SubtotalCents(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
