package auth

import "context"

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// WithIdentity stores the authenticated caller in ctx (called by middleware).
func WithIdentity(ctx context.Context, userID uint, role Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	return ctx
}

// UserIDFrom retrieves userID safely
func UserIDFrom(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok && id != 0
}

func RoleFrom(ctx context.Context) Role {
	role, _ := ctx.Value(roleKey).(Role)
	return role
}
