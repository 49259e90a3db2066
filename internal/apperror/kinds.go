package apperror

import "net/http"

// Kind identifies one failure variant. The set is closed: a new failure is a
// new Kind in the table below, never a new error type.
type Kind string

const (
	// -- Cart --
	KindProductAlreadyInCart Kind = "ProductAlreadyInCart"
	KindCartItemNotFound     Kind = "CartItemNotFound"
	KindInvalidQuantity      Kind = "InvalidQuantity"
	KindCartEmpty            Kind = "CartEmpty"
	KindStorageConflict      Kind = "StorageConflict"

	// -- Inventory --
	KindInsufficientInventory Kind = "InsufficientInventory"

	// -- Catalog / Store / User --
	KindProductNotFound         Kind = "ProductNotFound"
	KindStoreNotFound           Kind = "StoreNotFound"
	KindStoreUnauthorizedAccess Kind = "StoreUnauthorizedAccess"
	KindUserNotFound            Kind = "UserNotFound"
	KindUnauthenticated         Kind = "Unauthenticated"
	KindForbidden               Kind = "Forbidden"

	// -- Request / Infrastructure --
	KindInvalidRequest Kind = "InvalidRequest"
	KindRateLimited    Kind = "RateLimited"
	KindUnavailable    Kind = "Unavailable"
	KindInternal       Kind = "Internal"
)

// Stable error codes, grouped by domain prefix.
const (
	CodeCartProductAlreadyInCart = "CART_PRODUCT_ALREADY_IN_CART"
	CodeCartItemNotFound         = "CART_ITEM_NOT_FOUND"
	CodeCartInvalidQuantity      = "CART_INVALID_QUANTITY"
	CodeCartEmpty                = "CART_EMPTY"
	CodeCartStorageConflict      = "CART_STORAGE_CONFLICT"

	CodeInventoryInsufficient = "INVENTORY_INSUFFICIENT"

	CodeProductNotFound         = "PRODUCT_NOT_FOUND"
	CodeStoreNotFound           = "STORE_NOT_FOUND"
	CodeStoreUnauthorizedAccess = "STORE_UNAUTHORIZED_ACCESS"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeUserUnauthenticated     = "USER_UNAUTHENTICATED"
	CodeUserForbidden           = "USER_FORBIDDEN"

	CodeRequestInvalid     = "REQUEST_INVALID"
	CodeRequestRateLimited = "REQUEST_RATE_LIMITED"
	CodeSystemUnavailable  = "SYSTEM_UNAVAILABLE"
	CodeSystemInternal     = "SYSTEM_INTERNAL"
)

type definition struct {
	status  int
	code    string
	message string
}

var definitions = map[Kind]definition{
	KindProductAlreadyInCart: {http.StatusConflict, CodeCartProductAlreadyInCart, "product is already in the cart"},
	KindCartItemNotFound:     {http.StatusNotFound, CodeCartItemNotFound, "cart item not found"},
	KindInvalidQuantity:      {http.StatusBadRequest, CodeCartInvalidQuantity, "invalid cart quantity"},
	KindCartEmpty:            {http.StatusBadRequest, CodeCartEmpty, "cart is empty"},
	KindStorageConflict:      {http.StatusConflict, CodeCartStorageConflict, "concurrent cart modification"},

	KindInsufficientInventory: {http.StatusBadRequest, CodeInventoryInsufficient, "insufficient inventory"},

	KindProductNotFound:         {http.StatusNotFound, CodeProductNotFound, "product not found"},
	KindStoreNotFound:           {http.StatusNotFound, CodeStoreNotFound, "store not found"},
	KindStoreUnauthorizedAccess: {http.StatusForbidden, CodeStoreUnauthorizedAccess, "unauthorized access to store"},
	KindUserNotFound:            {http.StatusNotFound, CodeUserNotFound, "user not found"},
	KindUnauthenticated:         {http.StatusUnauthorized, CodeUserUnauthenticated, "user not authenticated"},
	KindForbidden:               {http.StatusForbidden, CodeUserForbidden, "insufficient role"},

	KindInvalidRequest: {http.StatusBadRequest, CodeRequestInvalid, "invalid request"},
	KindRateLimited:    {http.StatusTooManyRequests, CodeRequestRateLimited, "too many requests"},
	KindUnavailable:    {http.StatusServiceUnavailable, CodeSystemUnavailable, "service temporarily unavailable"},
	KindInternal:       {http.StatusInternalServerError, CodeSystemInternal, "internal server error"},
}

func lookup(kind Kind) definition {
	if d, ok := definitions[kind]; ok {
		return d
	}
	return definitions[KindInternal]
}

// Status returns the fixed HTTP status for kind.
func (k Kind) Status() int { return lookup(k).status }

// Code returns the stable error code for kind.
func (k Kind) Code() string { return lookup(k).code }

// Kinds lists every known kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(definitions))
	for k := range definitions {
		out = append(out, k)
	}
	return out
}
