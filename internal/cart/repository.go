package cart

import (
	"context"
	"database/sql"

	"shopora-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetOrCreateCart(ctx context.Context, userID uint) (*Cart, error)
	GetItems(ctx context.Context, cartID uint) ([]*CartItem, error)
	GetItemByProduct(ctx context.Context, cartID, productID uint) (*CartItem, error)
	GetItem(ctx context.Context, itemID, cartID uint) (*CartItem, error)
	CreateItem(ctx context.Context, cartID, productID uint, qty int, unitPrice int64) (*CartItem, error)
	UpdateItemQty(ctx context.Context, itemID uint, qty int, unitPrice int64) (*CartItem, error)
	DeleteItem(ctx context.Context, itemID, cartID uint) error
	CountItems(ctx context.Context, userID uint) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetOrCreateCart resolves the user's single cart, creating it lazily.
// The ON CONFLICT clause keeps the one-cart-per-user invariant under
// concurrent first access.
func (r *repository) GetOrCreateCart(ctx context.Context, userID uint) (*Cart, error) {
	query := `
	INSERT INTO carts (user_id)
	VALUES ($1)
	ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
	RETURNING id, user_id, created_at
	`

	var cart Cart
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *repository) GetItems(ctx context.Context, cartID uint) ([]*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetItems"),
		zap.Uint("cart_id", cartID),
	)

	query := `
	SELECT
		ci.id,
		ci.cart_id,
		ci.product_id,
		ci.qty,
		ci.unit_price,
		ci.created_at,
		ci.updated_at,

		p.id,
		p.name,
		p.slug,
		p.price,
		p.stock,
		p.is_active,
		COALESCE(pi.url, '')
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	LEFT JOIN product_images pi ON pi.product_id = p.id AND pi.is_primary = TRUE
	WHERE ci.cart_id = $1
	ORDER BY ci.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*CartItem
	for rows.Next() {
		item := &CartItem{Product: &ProductInfo{}}
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Qty,
			&item.UnitPrice,
			&item.CreatedAt,
			&item.UpdatedAt,

			&item.Product.ID,
			&item.Product.Name,
			&item.Product.Slug,
			&item.Product.Price,
			&item.Product.Stock,
			&item.Product.IsActive,
			&item.Product.ImageURL,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *repository) GetItemByProduct(ctx context.Context, cartID, productID uint) (*CartItem, error) {
	query := `
	SELECT id, cart_id, product_id, qty, unit_price, created_at, updated_at
	FROM cart_items
	WHERE cart_id = $1 AND product_id = $2
	`

	var item CartItem
	err := r.db.QueryRowContext(ctx, query, cartID, productID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Qty, &item.UnitPrice,
		&item.CreatedAt, &item.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) GetItem(ctx context.Context, itemID, cartID uint) (*CartItem, error) {
	query := `
	SELECT id, cart_id, product_id, qty, unit_price, created_at, updated_at
	FROM cart_items
	WHERE id = $1 AND cart_id = $2
	`

	var item CartItem
	err := r.db.QueryRowContext(ctx, query, itemID, cartID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Qty, &item.UnitPrice,
		&item.CreatedAt, &item.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, cartID, productID uint, qty int, unitPrice int64) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateItem"),
		zap.Uint("cart_id", cartID),
		zap.Uint("product_id", productID),
	)

	query := `
	INSERT INTO cart_items (cart_id, product_id, qty, unit_price)
	VALUES ($1, $2, $3, $4)
	RETURNING id, cart_id, product_id, qty, unit_price, created_at, updated_at
	`

	var item CartItem
	err := r.db.QueryRowContext(ctx, query, cartID, productID, qty, unitPrice).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Qty, &item.UnitPrice,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create cart item", zap.Error(err))
		return nil, err
	}

	log.Info("cart item created", zap.Uint("cart_item_id", item.ID))
	return &item, nil
}

func (r *repository) UpdateItemQty(ctx context.Context, itemID uint, qty int, unitPrice int64) (*CartItem, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	query := `
	UPDATE cart_items
	SET qty = $1,
	    unit_price = $2,
	    updated_at = NOW()
	WHERE id = $3
	RETURNING id, cart_id, product_id, qty, unit_price, created_at, updated_at
	`

	var item CartItem
	err := r.db.QueryRowContext(ctx, query, qty, unitPrice, itemID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Qty, &item.UnitPrice,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) DeleteItem(ctx context.Context, itemID, cartID uint) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE id = $1 AND cart_id = $2
	`, itemID, cartID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// CountItems reports how many items sit in the user's cart without
// loading them. Checkout uses it to reject an empty cart before any
// transaction is opened.
func (r *repository) CountItems(ctx context.Context, userID uint) (int64, error) {
	query := `
	SELECT COUNT(*)
	FROM cart_items ci
	JOIN carts c ON c.id = ci.cart_id
	WHERE c.user_id = $1
	`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
