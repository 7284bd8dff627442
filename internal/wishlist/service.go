package wishlist

import (
	"context"
	"errors"

	"shopora-be/internal/logger"
	"shopora-be/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	GetWishlist(ctx context.Context, userID uint) (*View, error)
	Toggle(ctx context.Context, userID, productID uint) (added bool, err error)
	Remove(ctx context.Context, userID, productID uint) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

func (s *service) GetWishlist(ctx context.Context, userID uint) (*View, error) {
	items, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []*Item{}
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	return &View{Items: items, ProductIDs: productIDs}, nil
}

// Toggle adds the product when absent and removes it when present.
func (s *service) Toggle(ctx context.Context, userID, productID uint) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Toggle"),
		zap.Uint("user_id", userID),
		zap.Uint("product_id", productID),
	)

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return false, ErrProductNotFound
		}
		return false, err
	}

	exists, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.repo.Remove(ctx, userID, productID); err != nil {
			return false, err
		}
		log.Info("removed from wishlist")
		return false, nil
	}

	if _, err := s.repo.Add(ctx, userID, productID); err != nil {
		return false, err
	}
	log.Info("added to wishlist")
	return true, nil
}

func (s *service) Remove(ctx context.Context, userID, productID uint) error {
	return s.repo.Remove(ctx, userID, productID)
}
