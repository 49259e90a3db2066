package user

import (
	"context"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/cart"
	"marketcart-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	GetUser(ctx context.Context, userID uint) (User, error)
	// DeleteAccount tears down the user's cart before removing the user.
	DeleteAccount(ctx context.Context, userID uint) error
}

type service struct {
	repo  Repository
	carts cart.Store
}

func NewService(repo Repository, carts cart.Store) Service {
	return &service{repo: repo, carts: carts}
}

func (s *service) GetUser(ctx context.Context, userID uint) (User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return User{}, apperror.FromError(err)
	}
	return u, nil
}

func (s *service) DeleteAccount(ctx context.Context, userID uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteAccount"),
		zap.Uint("target_user_id", userID),
	)

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return apperror.FromError(err)
	}

	if err := s.carts.DeleteAllForUser(ctx, userID); err != nil {
		log.Error("failed to delete user cart", zap.Error(err))
		return apperror.FromError(err)
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		log.Error("failed to delete user", zap.Error(err))
		return apperror.FromError(err)
	}

	log.Info("account deleted")
	return nil
}
