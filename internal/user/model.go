package user

import (
	"time"

	"marketcart-be/internal/auth"
)

type User struct {
	ID        uint
	Email     string
	Role      auth.Role
	CreatedAt time.Time
}
