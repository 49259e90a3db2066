package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/logger"
	"marketcart-be/internal/metrics"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const itemColumns = `
		id,
		cart_id,
		product_id,
		quantity,
		unit_price_cents,
		created_at,
		updated_at`

type repository struct {
	db *sql.DB
}

// NewRepository returns the postgres Store. The (cart_id, product_id) unique
// index on cart_items is the last line of defense for the one-item-per-product
// invariant.
func NewRepository(db *sql.DB) Store {
	return &repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (CartItem, error) {
	var item CartItem
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitPriceCents,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func scanCart(row scanner) (Cart, error) {
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) FindItem(ctx context.Context, cartID string, productID int64) (*CartItem, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT`+itemColumns+`
	FROM cart_items
	WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, cartID string) ([]CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListItems"),
		zap.String("cart_id", cartID),
	)

	timer := metrics.StartTimer()

	rows, err := r.db.QueryContext(ctx, `
	SELECT`+itemColumns+`
	FROM cart_items
	WHERE cart_id = $1
	ORDER BY seq ASC
	`, cartID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := make([]CartItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(items)),
		zap.Duration("duration", timer.Duration()),
	)

	return items, nil
}

func (r *repository) Upsert(ctx context.Context, item CartItem) (CartItem, error) {
	if item.ID == "" {
		return r.insertItem(ctx, item)
	}
	return r.updateItem(ctx, item)
}

func (r *repository) insertItem(ctx context.Context, item CartItem) (CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "insertItem"),
		zap.String("cart_id", item.CartID),
		zap.Int64("product_id", item.ProductID),
	)

	log.Debug("start create cart item")

	row := r.db.QueryRowContext(ctx, `
	INSERT INTO cart_items (
		id,
		cart_id,
		product_id,
		quantity,
		unit_price_cents,
		created_at,
		updated_at
	)
	VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	RETURNING`+itemColumns,
		uuid.NewString(),
		item.CartID,
		item.ProductID,
		item.Quantity,
		item.UnitPriceCents,
	)

	created, err := scanItem(row)
	if err != nil {
		if isUniqueViolation(err) {
			log.Info("lost uniqueness race on insert")
			return CartItem{}, apperror.StorageConflict(err)
		}
		switch foreignKeyViolation(err) {
		case fkCartItemsCart:
			log.Info("cart deleted under insert")
			return CartItem{}, apperror.Wrap(apperror.KindUserNotFound, ErrCartDeleted)
		case fkCartItemsProduct:
			return CartItem{}, apperror.ProductNotFound(item.ProductID)
		}
		log.Error("failed to create cart item", zap.Error(err))
		return CartItem{}, err
	}

	log.Info("success create cart item", zap.String("cart_item_id", created.ID))
	return created, nil
}

func (r *repository) updateItem(ctx context.Context, item CartItem) (CartItem, error) {
	row := r.db.QueryRowContext(ctx, `
	UPDATE cart_items
	SET quantity = $2,
	    unit_price_cents = $3,
	    updated_at = NOW()
	WHERE id = $1
	RETURNING`+itemColumns,
		item.ID,
		item.Quantity,
		item.UnitPriceCents,
	)

	updated, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CartItem{}, apperror.CartItemNotFound(item.CartID, item.ProductID)
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update cart item",
			zap.String("cart_item_id", item.ID),
			zap.Error(err),
		)
		return CartItem{}, err
	}

	return updated, nil
}

func (r *repository) Delete(ctx context.Context, itemID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}

func (r *repository) DeleteAllForCart(ctx context.Context, cartID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil {
		logger.FromCtx(ctx).Debug("cart items deleted",
			zap.String("cart_id", cartID),
			zap.Int64("rows", n),
		)
	}
	return nil
}

func (r *repository) DeleteItems(ctx context.Context, cartID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND id = ANY($2)
	`, cartID, pq.Array(itemIDs))
	return err
}

// LockCart holds a row lock on the cart for the duration of fn, so drains of
// the same cart serialize across every server instance. The lock transaction
// is detached from ctx so a caller hanging up mid-drain cannot release it
// before fn returns.
func (r *repository) LockCart(ctx context.Context, cartID string, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		// Nothing to lock; the cart and its items are already gone.
		return fn(ctx)
	}
	if err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) DeleteAllForUser(ctx context.Context, userID uint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)
	`, userID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	return tx.Commit()
}

func (r *repository) ResolveCartForUser(ctx context.Context, userID uint) (Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ResolveCartForUser"),
	)

	c, err := r.findCart(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Cart{}, err
	}

	row := r.db.QueryRowContext(ctx, `
	INSERT INTO carts (id, user_id, created_at, updated_at)
	VALUES ($1, $2, NOW(), NOW())
	ON CONFLICT (user_id) DO NOTHING
	RETURNING id, user_id, created_at, updated_at
	`, uuid.NewString(), userID)

	c, err = scanCart(row)
	if errors.Is(err, sql.ErrNoRows) {
		// someone else created it concurrently
		return r.findCart(ctx, userID)
	}
	if err != nil {
		log.Error("failed to create cart", zap.Error(err))
		return Cart{}, err
	}

	log.Info("cart created", zap.String("cart_id", c.ID))
	return c, nil
}

func (r *repository) findCart(ctx context.Context, userID uint) (Cart, error) {
	return scanCart(r.db.QueryRowContext(ctx, `
	SELECT id, user_id, created_at, updated_at
	FROM carts
	WHERE user_id = $1
	`, userID))
}
