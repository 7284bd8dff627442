package product

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shopora-be/internal/category"
	"shopora-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type ListParams struct {
	Search       string
	CategorySlug string
	MinPrice     *int64
	MaxPrice     *int64
	Sort         string
	Page         int
	Limit        int
}

type Repository interface {
	List(ctx context.Context, params ListParams) ([]*Product, int64, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetImages(ctx context.Context, productIDs []uint) (map[uint][]Image, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, params ListParams) ([]*Product, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	start := time.Now()

	// ---------- pagination ----------
	limit := 12
	if params.Limit > 0 {
		limit = params.Limit
	}
	if limit > 100 {
		limit = 100
	}

	page := 1
	if params.Page > 0 {
		page = params.Page
	}

	offset := (page - 1) * limit

	// ---------- where ----------
	where := []string{"p.is_active = TRUE"}
	args := []any{}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}

	if params.CategorySlug != "" {
		args = append(args, params.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}

	if params.MinPrice != nil {
		args = append(args, *params.MinPrice)
		where = append(where, fmt.Sprintf("p.price >= $%d", len(args)))
	}

	if params.MaxPrice != nil {
		args = append(args, *params.MaxPrice)
		where = append(where, fmt.Sprintf("p.price <= $%d", len(args)))
	}

	// ---------- sort ----------
	orderBy := "p.created_at DESC"
	switch params.Sort {
	case "price_asc":
		orderBy = "p.price ASC"
	case "price_desc":
		orderBy = "p.price DESC"
	case "discount":
		where = append(where, "p.compare_at_price IS NOT NULL AND p.compare_at_price > p.price")
		orderBy = "(p.compare_at_price - p.price) DESC"
	}

	whereClause := strings.Join(where, " AND ")

	// ---------- count ----------
	countQuery := `
	SELECT COUNT(*)
	FROM products p
	JOIN categories c ON c.id = p.category_id
	WHERE ` + whereClause

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("count query failed", zap.Error(err))
		return nil, 0, err
	}

	// ---------- query ----------
	query := `
	SELECT
		p.id,
		p.category_id,
		p.name,
		p.slug,
		p.description,
		p.price,
		p.compare_at_price,
		p.stock,
		p.is_active,
		p.created_at,
		p.updated_at,

		c.id,
		c.name,
		c.slug
	FROM products p
	JOIN categories c ON c.id = p.category_id
	WHERE ` + whereClause + `
	ORDER BY ` + orderBy + `
	LIMIT $` + fmt.Sprint(len(args)+1) + `
	OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]*Product, 0, limit)
	for rows.Next() {
		p := &Product{Category: &category.Category{}}
		if err := rows.Scan(
			&p.ID,
			&p.CategoryID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Price,
			&p.CompareAtPrice,
			&p.Stock,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,

			&p.Category.ID,
			&p.Category.Name,
			&p.Category.Slug,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	log.Debug("query success",
		zap.Int("rows", len(products)),
		zap.Duration("duration", time.Since(start)),
	)

	return products, total, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	query := `
	SELECT
		p.id,
		p.category_id,
		p.name,
		p.slug,
		p.description,
		p.price,
		p.compare_at_price,
		p.stock,
		p.is_active,
		p.created_at,
		p.updated_at,

		c.id,
		c.name,
		c.slug
	FROM products p
	JOIN categories c ON c.id = p.category_id
	WHERE p.slug = $1 AND p.is_active = TRUE
	`

	p := &Product{Category: &category.Category{}}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.CompareAtPrice,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,

		&p.Category.ID,
		&p.Category.Name,
		&p.Category.Slug,
	)

	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// GetByID loads a product regardless of its active flag; callers decide
// how to treat inactive rows.
func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	query := `
	SELECT id, category_id, name, slug, description, price, compare_at_price,
	       stock, is_active, created_at, updated_at
	FROM products
	WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.CompareAtPrice,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetImages loads images for a set of products, primary image first.
func (r *repository) GetImages(ctx context.Context, productIDs []uint) (map[uint][]Image, error) {
	if len(productIDs) == 0 {
		return map[uint][]Image{}, nil
	}

	ids := make([]int64, 0, len(productIDs))
	for _, id := range productIDs {
		ids = append(ids, int64(id))
	}

	query := `
	SELECT id, product_id, url, is_primary
	FROM product_images
	WHERE product_id = ANY($1)
	ORDER BY is_primary DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make(map[uint][]Image)
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.IsPrimary); err != nil {
			return nil, err
		}
		images[img.ProductID] = append(images[img.ProductID], img)
	}

	return images, rows.Err()
}
