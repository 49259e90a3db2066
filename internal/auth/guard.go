package auth

import (
	"context"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/logger"

	"go.uber.org/zap"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// Satisfies reports whether r grants at least required.
func (r Role) Satisfies(required Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[required]
}

// RoleSource resolves the current role of a user. It fails with UserNotFound
// for unknown users.
type RoleSource interface {
	RoleOf(ctx context.Context, userID uint) (Role, error)
}

// Guard is consulted by the API layer before any cart operation. The cart
// core itself never inspects roles.
type Guard struct {
	roles RoleSource
}

func NewGuard(roles RoleSource) *Guard {
	return &Guard{roles: roles}
}

func (g *Guard) RequireRole(ctx context.Context, userID uint, required Role) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "auth"),
		zap.String("method", "RequireRole"),
		zap.String("required", string(required)),
	)

	if userID == 0 {
		return apperror.New(apperror.KindUnauthenticated, "")
	}

	role, err := g.roles.RoleOf(ctx, userID)
	if err != nil {
		log.Warn("role lookup failed", zap.Error(err))
		return apperror.FromError(err)
	}

	if !role.Satisfies(required) {
		log.Info("access denied", zap.String("role", string(role)))
		return apperror.Newf(apperror.KindForbidden, "role %s required", required)
	}

	return nil
}
