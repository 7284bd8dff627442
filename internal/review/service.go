package review

import (
	"context"
	"errors"
	"strings"

	"shopora-be/internal/logger"
	"shopora-be/internal/product"

	"go.uber.org/zap"
)

const (
	maxTitleLen = 120
	maxBodyLen  = 2000
)

type Service interface {
	GetReviews(ctx context.Context, productSlug string, userID uint, page int) (*View, error)
	Upsert(ctx context.Context, productSlug string, userID uint, rating int, title, body *string) (*Review, error)
	Delete(ctx context.Context, productSlug string, userID uint) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

func (s *service) resolveProduct(ctx context.Context, slug string) (*product.Product, error) {
	p, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *service) GetReviews(ctx context.Context, productSlug string, userID uint, page int) (*View, error) {
	p, err := s.resolveProduct(ctx, productSlug)
	if err != nil {
		return nil, err
	}

	if page <= 0 {
		page = 1
	}

	reviews, total, err := s.repo.ListByProduct(ctx, p.ID, page, 10)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []*Review{}
	}

	summary, err := s.repo.Summary(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	view := &View{
		Reviews: reviews,
		Total:   total,
		Page:    page,
		Summary: summary,
	}

	if userID != 0 {
		mine, err := s.repo.GetByProductAndUser(ctx, p.ID, userID)
		if err != nil {
			return nil, err
		}
		view.MyReview = mine
	}

	return view, nil
}

func (s *service) Upsert(ctx context.Context, productSlug string, userID uint, rating int, title, body *string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	if title != nil && len(*title) > maxTitleLen {
		return nil, &ValidationError{Field: "title", Reason: "must be at most 120 characters"}
	}
	if body != nil && len(*body) > maxBodyLen {
		return nil, &ValidationError{Field: "body", Reason: "must be at most 2000 characters"}
	}
	if title != nil && strings.TrimSpace(*title) == "" {
		title = nil
	}
	if body != nil && strings.TrimSpace(*body) == "" {
		body = nil
	}

	p, err := s.resolveProduct(ctx, productSlug)
	if err != nil {
		return nil, err
	}

	rv, err := s.repo.Upsert(ctx, UpsertParams{
		ProductID: p.ID,
		UserID:    userID,
		Rating:    rating,
		Title:     title,
		Body:      body,
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("review saved",
		zap.String("layer", "service"),
		zap.Uint("product_id", p.ID),
		zap.Uint("user_id", userID),
		zap.Int("rating", rating),
	)

	return rv, nil
}

func (s *service) Delete(ctx context.Context, productSlug string, userID uint) error {
	p, err := s.resolveProduct(ctx, productSlug)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, p.ID, userID)
}
