package user

import (
	"context"
	"database/sql"
	"errors"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/auth"
	"marketcart-be/internal/logger"

	"go.uber.org/zap"
)

// Repository also serves as the auth.RoleSource for the guard.
type Repository interface {
	FindByID(ctx context.Context, userID uint) (User, error)
	RoleOf(ctx context.Context, userID uint) (auth.Role, error)
	Delete(ctx context.Context, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, userID uint) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, role, created_at FROM users WHERE id = $1",
		userID,
	).Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return User{}, apperror.UserNotFound(userID)
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to find user",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return User{}, err
	}

	return u, nil
}

func (r *repository) RoleOf(ctx context.Context, userID uint) (auth.Role, error) {
	var role auth.Role
	err := r.db.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id = $1",
		userID,
	).Scan(&role)

	if errors.Is(err, sql.ErrNoRows) {
		return "", apperror.UserNotFound(userID)
	}
	return role, err
}

func (r *repository) Delete(ctx context.Context, userID uint) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.UserNotFound(userID)
	}
	return nil
}
