package review

import (
	"context"
	"database/sql"

	"shopora-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ListByProduct(ctx context.Context, productID uint, page, limit int) ([]*Review, int64, error)
	Summary(ctx context.Context, productID uint) (Summary, error)
	GetByProductAndUser(ctx context.Context, productID, userID uint) (*Review, error)
	Upsert(ctx context.Context, params UpsertParams) (*Review, error)
	Delete(ctx context.Context, productID, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByProduct(ctx context.Context, productID uint, page, limit int) ([]*Review, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByProduct"),
		zap.Uint("product_id", productID),
	)

	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM product_reviews WHERE product_id = $1
	`, productID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			rv.id, rv.product_id, rv.user_id, rv.rating, rv.title, rv.body,
			rv.created_at, rv.updated_at, u.name
		FROM product_reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.product_id = $1
		ORDER BY rv.created_at DESC
		LIMIT $2 OFFSET $3
	`, productID, limit, offset)
	if err != nil {
		log.Error("failed to load reviews", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(
			&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Title, &rv.Body,
			&rv.CreatedAt, &rv.UpdatedAt, &rv.UserName,
		); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, &rv)
	}

	return reviews, total, rows.Err()
}

func (r *repository) Summary(ctx context.Context, productID uint) (Summary, error) {
	var s Summary
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM product_reviews
		WHERE product_id = $1
	`, productID).Scan(&s.Average, &s.Count)
	return s, err
}

func (r *repository) GetByProductAndUser(ctx context.Context, productID, userID uint) (*Review, error) {
	var rv Review
	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, user_id, rating, title, body, created_at, updated_at
		FROM product_reviews
		WHERE product_id = $1 AND user_id = $2
	`, productID, userID).Scan(
		&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Title, &rv.Body,
		&rv.CreatedAt, &rv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Upsert writes the user's review, replacing any previous one for the
// same product. The (product_id, user_id) unique constraint drives the
// conflict clause.
func (r *repository) Upsert(ctx context.Context, params UpsertParams) (*Review, error) {
	query := `
	INSERT INTO product_reviews (product_id, user_id, rating, title, body)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (product_id, user_id) DO UPDATE SET
		rating = EXCLUDED.rating,
		title = EXCLUDED.title,
		body = EXCLUDED.body,
		updated_at = NOW()
	RETURNING id, product_id, user_id, rating, title, body, created_at, updated_at
	`

	var rv Review
	err := r.db.QueryRowContext(ctx, query,
		params.ProductID, params.UserID, params.Rating, params.Title, params.Body,
	).Scan(
		&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Title, &rv.Body,
		&rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &rv, nil
}

func (r *repository) Delete(ctx context.Context, productID, userID uint) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM product_reviews WHERE product_id = $1 AND user_id = $2
	`, productID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReviewNotFound
	}

	return nil
}
