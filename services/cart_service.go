package services

import (
	"context"
	"errors"

	"github.com/yashrajoria/storefront/apperrors"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/repository"
)

const MsgUserNotFound = "User not found"

type ICartRepository interface {
	GetCart(ctx context.Context, userID string) (models.Cart, error)
	IncrementCartItem(ctx context.Context, userID string, key models.ItemKey) error
	DecrementCartItem(ctx context.Context, userID string, key models.ItemKey) error
}

// CartService keeps the per-user slot counters. Counts never go below zero.
type CartService struct {
	repo ICartRepository
}

func NewCartService(repo ICartRepository) *CartService {
	return &CartService{repo: repo}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (models.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, mapCartError(err)
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, key models.ItemKey) error {
	if err := key.Validate(); err != nil {
		return apperrors.Validation("Invalid itemId", err)
	}
	return mapCartError(s.repo.IncrementCartItem(ctx, userID, key))
}

// RemoveItem decrements the slot when it is positive and is a no-op otherwise.
func (s *CartService) RemoveItem(ctx context.Context, userID string, key models.ItemKey) error {
	if err := key.Validate(); err != nil {
		return apperrors.Validation("Invalid itemId", err)
	}
	return mapCartError(s.repo.DecrementCartItem(ctx, userID, key))
}

func mapCartError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(MsgUserNotFound, err)
	default:
		return apperrors.Internal("Failed to update cart", err)
	}
}
