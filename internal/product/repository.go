package product

import (
	"context"
	"database/sql"
	"errors"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	SnapshotProvider
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSnapshot(ctx context.Context, productID int64) (Snapshot, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetSnapshot"),
		zap.Int64("product_id", productID),
	)

	var snap Snapshot
	err := r.db.QueryRowContext(ctx, `
		SELECT id, price_cents, stock
		FROM products
		WHERE id = $1 AND status = $2
	`, productID, StatusActive).Scan(
		&snap.ProductID,
		&snap.PriceCents,
		&snap.AvailableStock,
	)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("product not found")
		return Snapshot{}, apperror.ProductNotFound(productID)
	}
	if err != nil {
		log.Error("failed to load product snapshot", zap.Error(err))
		return Snapshot{}, err
	}

	return snap, nil
}
