package cart

import (
	"context"

	"shopora-be/internal/logger"
	"shopora-be/internal/product"

	"go.uber.org/zap"
)

// CartView is the cart plus a subtotal computed from the snapshot prices.
// The subtotal is a display convenience; the amount actually charged is
// recomputed from live prices at checkout.
type CartView struct {
	Cart     *Cart       `json:"cart"`
	Items    []*CartItem `json:"items"`
	Subtotal int64       `json:"subtotal"`
}

// Service defines the business logic for carts.
type Service interface {
	GetCart(ctx context.Context, userID uint) (*CartView, error)
	AddItem(ctx context.Context, params AddItemParams) (*CartView, error)
	UpdateItem(ctx context.Context, params UpdateItemParams) (*CartView, error)
	RemoveItem(ctx context.Context, userID, itemID uint) (*CartView, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

func (s *service) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	for _, item := range items {
		subtotal += int64(item.Qty) * item.UnitPrice
	}

	return &CartView{Cart: cart, Items: items, Subtotal: subtotal}, nil
}

// AddItem puts a product into the user's cart. Adding a product that is
// already present raises its quantity instead of duplicating the row,
// and refreshes the snapshot price.
func (s *service) AddItem(ctx context.Context, params AddItemParams) (*CartView, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.Uint("user_id", params.UserID),
		zap.Uint("product_id", params.ProductID),
	)

	// 1. Validate quantity
	if params.Qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 2. Only active products can be added
	p, err := s.productRepo.GetByID(ctx, params.ProductID)
	if err != nil {
		if err == product.ErrProductNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}

	// 3. Resolve the cart
	cart, err := s.repo.GetOrCreateCart(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	// 4. Merge with an existing row for the same product
	existing, err := s.repo.GetItemByProduct(ctx, cart.ID, params.ProductID)
	if err != nil {
		return nil, err
	}

	finalQty := params.Qty
	if existing != nil {
		finalQty += existing.Qty
	}

	// 5. Validate stock against the merged quantity
	if p.Stock < finalQty {
		log.Warn("add to cart rejected",
			zap.Int("requested", finalQty),
			zap.Int("stock", p.Stock),
		)
		return nil, ErrInsufficientStock
	}

	// 6. Create or update, snapshotting the current price
	if existing == nil {
		_, err = s.repo.CreateItem(ctx, cart.ID, params.ProductID, params.Qty, p.Price)
	} else {
		_, err = s.repo.UpdateItemQty(ctx, existing.ID, finalQty, p.Price)
	}
	if err != nil {
		return nil, err
	}

	return s.GetCart(ctx, params.UserID)
}

func (s *service) UpdateItem(ctx context.Context, params UpdateItemParams) (*CartView, error) {
	if params.Qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.repo.GetOrCreateCart(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, params.ItemID, cart.ID)
	if err != nil {
		return nil, err
	}

	p, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		if err == product.ErrProductNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}

	if p.Stock < params.Qty {
		return nil, ErrInsufficientStock
	}

	if _, err := s.repo.UpdateItemQty(ctx, item.ID, params.Qty, p.Price); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, params.UserID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uint) (*CartView, error) {
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteItem(ctx, itemID, cart.ID); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}
