package cart

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// -- Validation & Input --
	ErrEmptyCartID = errors.New("cart id is required")

	// -- Concurrency --
	ErrCartDeleted = errors.New("cart was deleted with its owner")

	// -- Constants (External Systems) --
	PgUniqueViolation     = "23505"
	PgForeignKeyViolation = "23503"
)

// maxConflictRetries is how many times AddItem reruns its check-then-act
// after losing a uniqueness race.
const maxConflictRetries = 1

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == PgUniqueViolation
	}
	return false
}

const (
	fkCartItemsCart    = "cart_items_cart_id_fkey"
	fkCartItemsProduct = "cart_items_product_id_fkey"
)

// foreignKeyViolation returns the violated constraint name, or "" when err is
// not a foreign key violation.
func foreignKeyViolation(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == PgForeignKeyViolation {
		return pqErr.Constraint
	}
	return ""
}
