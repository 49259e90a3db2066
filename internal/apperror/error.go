package apperror

import (
	"context"
	"errors"
	"fmt"
)

// Error is the single shape of every domain failure: kind, message, status and
// code, plus an optional structured payload for client-side remediation.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Code    string
	Payload any

	cause error
}

// InventoryPayload accompanies InsufficientInventory.
type InventoryPayload struct {
	ProductID         int64 `json:"product_id"`
	RequestedQuantity int   `json:"requested_quantity"`
	AvailableQuantity int   `json:"available_quantity"`
}

// ConflictPayload accompanies ProductAlreadyInCart. Existing holds the item
// already recorded for the product.
type ConflictPayload struct {
	ProductID int64 `json:"product_id"`
	Existing  any   `json:"existing_item,omitempty"`
}

// ItemPayload identifies a (cart, product) pair.
type ItemPayload struct {
	CartID    string `json:"cart_id"`
	ProductID int64  `json:"product_id"`
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same kind, so sentinels built with New can be
// used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithPayload returns a copy of e carrying payload.
func (e *Error) WithPayload(payload any) *Error {
	cp := *e
	cp.Payload = payload
	return &cp
}

// New builds an error of kind. An empty message falls back to the kind's default.
func New(kind Kind, message string) *Error {
	d := lookup(kind)
	if message == "" {
		message = d.message
	}
	return &Error{
		Kind:    kind,
		Message: message,
		Status:  d.status,
		Code:    d.code,
	}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap builds an error of kind whose cause is err.
func Wrap(kind Kind, err error) *Error {
	e := New(kind, "")
	e.cause = err
	return e
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// FromError normalizes err into the taxonomy. Taxonomy errors pass through;
// context cancellation and deadlines become Unavailable; anything else is an
// Internal infrastructure fault.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(KindUnavailable, err)
	}
	return Wrap(KindInternal, err)
}

// Retryable reports whether the core retries err internally. Only
// StorageConflict qualifies.
func Retryable(err error) bool {
	return IsKind(err, KindStorageConflict)
}

// -- Constructors --

func ProductAlreadyInCart(productID int64, existing any) *Error {
	return New(KindProductAlreadyInCart, "").WithPayload(ConflictPayload{
		ProductID: productID,
		Existing:  existing,
	})
}

func InsufficientInventory(productID int64, requested, available int) *Error {
	return Newf(KindInsufficientInventory,
		"requested quantity %d exceeds available stock %d", requested, available,
	).WithPayload(InventoryPayload{
		ProductID:         productID,
		RequestedQuantity: requested,
		AvailableQuantity: available,
	})
}

func CartItemNotFound(cartID string, productID int64) *Error {
	return New(KindCartItemNotFound, "").WithPayload(ItemPayload{
		CartID:    cartID,
		ProductID: productID,
	})
}

func InvalidQuantity(quantity int) *Error {
	return Newf(KindInvalidQuantity, "quantity must be at least 1, got %d", quantity)
}

func StorageConflict(err error) *Error {
	return Wrap(KindStorageConflict, err)
}

func ProductNotFound(productID int64) *Error {
	return Newf(KindProductNotFound, "product %d not found", productID)
}

func UserNotFound(userID uint) *Error {
	return Newf(KindUserNotFound, "user %d not found", userID)
}

func StoreNotFound(storeID string) *Error {
	return Newf(KindStoreNotFound, "store %s not found", storeID)
}

func StoreUnauthorizedAccess(storeID string) *Error {
	return Newf(KindStoreUnauthorizedAccess, "unauthorized access to store %s", storeID)
}

func Unavailable(err error) *Error {
	return Wrap(KindUnavailable, err)
}

func Internal(err error) *Error {
	return Wrap(KindInternal, err)
}
