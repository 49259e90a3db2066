package httpapi

import (
	"context"
	"net/http"

	"marketcart-be/internal/auth"
)

// RoleGuard is satisfied by *auth.Guard.
type RoleGuard interface {
	RequireRole(ctx context.Context, userID uint, required auth.Role) error
}

func requireRole(guard RoleGuard, role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := auth.UserIDFrom(r.Context())
			if err := guard.RequireRole(r.Context(), userID, role); err != nil {
				respondError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(r *http.Request) uint {
	userID, _ := auth.UserIDFrom(r.Context())
	return userID
}
