package order

import "errors"

var (
	ErrNoItems     = errors.New("order has no items")
	ErrInvalidUser = errors.New("order requires a user")
)
