package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productColumns() []string {
	return []string{
		"p_id", "p_category_id", "p_name", "p_slug", "p_description", "p_price",
		"p_compare_at_price", "p_stock", "p_is_active", "p_created_at", "p_updated_at",
		"c_id", "c_name", "c_slug",
	}
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(productColumns()).AddRow(
			1, 2, "Wool Socks", "wool-socks", nil, int64(1299),
			nil, 10, true, time.Now(), time.Now(),
			2, "Apparel", "apparel",
		)

		mock.ExpectQuery("SELECT .* FROM products p").
			WithArgs(12, 0).
			WillReturnRows(rows)

		products, total, err := repo.List(context.Background(), ListParams{})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, "wool-socks", products[0].Slug)
		assert.Equal(t, "apparel", products[0].Category.Slug)
	})

	t.Run("WithFilters", func(t *testing.T) {
		minPrice := int64(500)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
			WithArgs("%sock%", "apparel", minPrice).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery("SELECT .* FROM products p .* ILIKE").
			WithArgs("%sock%", "apparel", minPrice, 12, 0).
			WillReturnRows(sqlmock.NewRows(productColumns()))

		products, total, err := repo.List(context.Background(), ListParams{
			Search:       "sock",
			CategorySlug: "apparel",
			MinPrice:     &minPrice,
		})
		assert.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, products)
	})

	t.Run("DiscountSort", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products .*compare_at_price IS NOT NULL").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery("SELECT .* FROM products p .* ORDER BY \\(p.compare_at_price - p.price\\) DESC").
			WithArgs(12, 0).
			WillReturnRows(sqlmock.NewRows(productColumns()))

		_, _, err := repo.List(context.Background(), ListParams{Sort: "discount"})
		assert.NoError(t, err)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
			WillReturnError(errors.New("db error"))

		_, _, err := repo.List(context.Background(), ListParams{})
		assert.Error(t, err)
	})
}

func TestRepository_GetBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(productColumns()).AddRow(
			1, 2, "Wool Socks", "wool-socks", nil, int64(1299),
			int64(1599), 10, true, time.Now(), time.Now(),
			2, "Apparel", "apparel",
		)

		mock.ExpectQuery("SELECT .* FROM products p .* WHERE p.slug = \\$1 AND p.is_active = TRUE").
			WithArgs("wool-socks").
			WillReturnRows(rows)

		p, err := repo.GetBySlug(context.Background(), "wool-socks")
		assert.NoError(t, err)
		assert.Equal(t, int64(1299), p.Price)
		require.NotNil(t, p.CompareAtPrice)
		assert.Equal(t, int64(1599), *p.CompareAtPrice)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products p").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(productColumns()))

		_, err := repo.GetBySlug(context.Background(), "missing")
		assert.Equal(t, ErrProductNotFound, err)
	})
}

func TestRepository_GetImages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "product_id", "url", "is_primary"}).
			AddRow(1, 1, "a.jpg", true).
			AddRow(2, 1, "b.jpg", false)

		mock.ExpectQuery("SELECT id, product_id, url, is_primary FROM product_images").
			WillReturnRows(rows)

		images, err := repo.GetImages(context.Background(), []uint{1})
		assert.NoError(t, err)
		require.Len(t, images[1], 2)
		assert.True(t, images[1][0].IsPrimary, "primary image should come first")
	})

	t.Run("EmptyInput", func(t *testing.T) {
		images, err := repo.GetImages(context.Background(), nil)
		assert.NoError(t, err)
		assert.Empty(t, images)
	})
}
