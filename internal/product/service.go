package product

import (
	"context"
)

type ProductPage struct {
	Products []*Product `json:"products"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
}

// Service defines the catalog browsing business logic.
type Service interface {
	List(ctx context.Context, params ListParams) (*ProductPage, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, params ListParams) (*ProductPage, error) {
	if params.Limit <= 0 {
		params.Limit = 12
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	products, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	images, err := s.repo.GetImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		p.Images = images[p.ID]
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     params.Page,
		Limit:    params.Limit,
	}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	images, err := s.repo.GetImages(ctx, []uint{p.ID})
	if err != nil {
		return nil, err
	}
	p.Images = images[p.ID]

	return p, nil
}
