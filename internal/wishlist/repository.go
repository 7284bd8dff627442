package wishlist

import (
	"context"
	"database/sql"

	"shopora-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByUser(ctx context.Context, userID uint) ([]*Item, error)
	Exists(ctx context.Context, userID, productID uint) (bool, error)
	Add(ctx context.Context, userID, productID uint) (*Item, error)
	Remove(ctx context.Context, userID, productID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUser(ctx context.Context, userID uint) ([]*Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByUser"),
		zap.Uint("user_id", userID),
	)

	query := `
	SELECT
		w.id, w.user_id, w.product_id, w.created_at,
		p.id, p.name, p.slug, p.price, p.compare_at_price, p.stock, p.is_active,
		COALESCE(pi.url, '')
	FROM wishlist_items w
	JOIN products p ON p.id = w.product_id
	LEFT JOIN product_images pi ON pi.product_id = p.id AND pi.is_primary = TRUE
	WHERE w.user_id = $1
	ORDER BY w.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to load wishlist", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item := &Item{Product: &ProductInfo{}}
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt,
			&item.Product.ID, &item.Product.Name, &item.Product.Slug,
			&item.Product.Price, &item.Product.CompareAtPrice,
			&item.Product.Stock, &item.Product.IsActive,
			&item.Product.ImageURL,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *repository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2
		)
	`, userID, productID).Scan(&exists)
	return exists, err
}

// Add inserts an entry; the unique (user_id, product_id) constraint plus
// ON CONFLICT keeps a double insert harmless.
func (r *repository) Add(ctx context.Context, userID, productID uint) (*Item, error) {
	query := `
	INSERT INTO wishlist_items (user_id, product_id)
	VALUES ($1, $2)
	ON CONFLICT (user_id, product_id) DO UPDATE SET user_id = EXCLUDED.user_id
	RETURNING id, user_id, product_id, created_at
	`

	var item Item
	err := r.db.QueryRowContext(ctx, query, userID, productID).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) Remove(ctx context.Context, userID, productID uint) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}

	return nil
}
