package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartLineRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "product_id", "qty"})
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "price", "stock", "is_active"})
}

func TestRepository_Checkout(t *testing.T) {
	details := ShippingDetails{
		FullName:     "Maija Meikäläinen",
		Phone:        "+358401234567",
		AddressLine1: "Mannerheimintie 1",
		City:         "Helsinki",
		PostalCode:   "00100",
		Country:      "Finland",
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT c.id, ci.product_id, ci.qty FROM carts c").
			WithArgs(uint(2)).
			WillReturnRows(cartLineRows().
				AddRow(1, 5, 2).
				AddRow(1, 9, 1))
		mock.ExpectQuery("SELECT id, name, price, stock, is_active FROM products WHERE id = ANY\\(\\$1\\) ORDER BY id FOR UPDATE").
			WithArgs(pq.Array([]int64{5, 9})).
			WillReturnRows(productRows().
				AddRow(5, "Wool Socks", int64(1200), 8, true).
				AddRow(9, "Vinyl Player", int64(9900), 3, true))
		mock.ExpectQuery("INSERT INTO orders").
			WithArgs(
				uint(2), int64(12300), int64(0), int64(12300), StatusPending,
				"Maija Meikäläinen", "+358401234567", "Mannerheimintie 1", nil,
				"Helsinki", "00100", "Finland",
			).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(7, time.Now(), time.Now()))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(uint(7), uint(5), 2, int64(1200)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products SET stock = stock - \\$1").
			WithArgs(2, uint(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(uint(7), uint(9), 1, int64(9900)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products SET stock = stock - \\$1").
			WithArgs(1, uint(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM cart_items").
			WithArgs(uint(1)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		order, err := repo.Checkout(context.Background(), 2, details)
		assert.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, uint(7), order.ID)
		assert.Equal(t, int64(12300), order.Subtotal, "priced from current catalog, not cart snapshots")
		assert.Equal(t, int64(12300), order.Total)
		assert.Equal(t, StatusPending, order.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyCartRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT c.id, ci.product_id, ci.qty FROM carts c").
			WithArgs(uint(2)).
			WillReturnRows(cartLineRows())
		mock.ExpectRollback()

		_, err = repo.Checkout(context.Background(), 2, details)
		assert.Equal(t, ErrCartEmpty, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientStockRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT c.id, ci.product_id, ci.qty FROM carts c").
			WithArgs(uint(2)).
			WillReturnRows(cartLineRows().AddRow(1, 5, 10))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs(pq.Array([]int64{5})).
			WillReturnRows(productRows().AddRow(5, "Wool Socks", int64(1200), 3, true))
		mock.ExpectRollback()

		_, err = repo.Checkout(context.Background(), 2, details)
		var stock *InsufficientStockError
		require.ErrorAs(t, err, &stock)
		assert.Equal(t, "Wool Socks", stock.ProductName)
		assert.NoError(t, mock.ExpectationsWereMet(), "no order or stock writes after rejection")
	})

	t.Run("InactiveProductRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT c.id, ci.product_id, ci.qty FROM carts c").
			WithArgs(uint(2)).
			WillReturnRows(cartLineRows().AddRow(1, 5, 1))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs(pq.Array([]int64{5})).
			WillReturnRows(productRows().AddRow(5, "Wool Socks", int64(1200), 3, false))
		mock.ExpectRollback()

		_, err = repo.Checkout(context.Background(), 2, details)
		var unavailable *ProductUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "Wool Socks", unavailable.ProductName)
	})

	t.Run("DeletedProductRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT c.id, ci.product_id, ci.qty FROM carts c").
			WithArgs(uint(2)).
			WillReturnRows(cartLineRows().AddRow(1, 5, 1))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs(pq.Array([]int64{5})).
			WillReturnRows(productRows())
		mock.ExpectRollback()

		_, err = repo.Checkout(context.Background(), 2, details)
		var unavailable *ProductUnavailableError
		require.ErrorAs(t, err, &unavailable)
	})

	t.Run("DuplicateProductLocksOnce", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT c.id, ci.product_id, ci.qty FROM carts c").
			WithArgs(uint(2)).
			WillReturnRows(cartLineRows().
				AddRow(1, 9, 1).
				AddRow(1, 5, 1))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs(pq.Array([]int64{5, 9})).
			WillReturnRows(productRows().
				AddRow(5, "Wool Socks", int64(1200), 8, true).
				AddRow(9, "Vinyl Player", int64(9900), 3, true))
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(8, time.Now(), time.Now()))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM cart_items").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		order, err := repo.Checkout(context.Background(), 2, details)
		assert.NoError(t, err)
		assert.Equal(t, int64(11100), order.Subtotal)
		assert.NoError(t, mock.ExpectationsWereMet(), "ids deduplicated and sorted before locking")
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT c.id, ci.product_id, ci.qty FROM carts c").
			WithArgs(uint(2)).
			WillReturnRows(cartLineRows().AddRow(1, 5, 1))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs(pq.Array([]int64{5})).
			WillReturnRows(productRows().AddRow(5, "Wool Socks", int64(1200), 3, true))
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		_, err = repo.Checkout(context.Background(), 2, details)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders").
			WithArgs(uint(2)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{
			"id", "user_id", "subtotal", "shipping_fee", "total", "status",
			"full_name", "phone", "address_line1", "address_line2",
			"city", "postal_code", "country", "created_at", "updated_at", "count",
		}).AddRow(
			7, 2, int64(12300), int64(0), int64(12300), "pending",
			"Maija Meikäläinen", "+358401234567", "Mannerheimintie 1", nil,
			"Helsinki", "00100", "Finland", time.Now(), time.Now(), 2,
		)

		mock.ExpectQuery("SELECT .* FROM orders o").
			WithArgs(uint(2), 10, 0).
			WillReturnRows(rows)

		orders, total, err := repo.GetOrders(context.Background(), 2, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, 2, orders[0].ItemsCount)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").
			WillReturnError(errors.New("db error"))

		_, _, err := repo.GetOrders(context.Background(), 2, 1, 10)
		assert.Error(t, err)
	})
}

func TestRepository_GetOrderDetail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM orders WHERE id = \\$1").
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "subtotal", "shipping_fee", "total", "status",
				"full_name", "phone", "address_line1", "address_line2",
				"city", "postal_code", "country", "created_at", "updated_at",
			}).AddRow(
				7, 2, int64(12300), int64(0), int64(12300), "pending",
				"Maija Meikäläinen", "+358401234567", "Mannerheimintie 1", nil,
				"Helsinki", "00100", "Finland", time.Now(), time.Now(),
			))

		mock.ExpectQuery("SELECT .* FROM order_items oi").
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "order_id", "product_id", "qty", "unit_price",
				"p_id", "p_name", "p_slug", "pi_url",
			}).AddRow(
				1, 7, 5, 2, int64(1200),
				5, "Wool Socks", "wool-socks", "socks.jpg",
			))

		order, err := repo.GetOrderDetail(context.Background(), 7)
		assert.NoError(t, err)
		require.Len(t, order.Items, 1)
		assert.Equal(t, int64(1200), order.Items[0].UnitPrice)
		assert.Equal(t, "wool-socks", order.Items[0].Product.Slug)
		assert.Equal(t, 1, order.ItemsCount)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM orders WHERE id = \\$1").
			WithArgs(uint(404)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetOrderDetail(context.Background(), 404)
		assert.Equal(t, ErrOrderNotFound, err)
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id = \\$1 FOR UPDATE").
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
		mock.ExpectExec("UPDATE orders SET status = \\$1").
			WithArgs(StatusPaid, uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT .* FROM orders WHERE id = \\$1").
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "subtotal", "shipping_fee", "total", "status",
				"full_name", "phone", "address_line1", "address_line2",
				"city", "postal_code", "country", "created_at", "updated_at",
			}).AddRow(
				7, 2, int64(12300), int64(0), int64(12300), "paid",
				"Maija Meikäläinen", "+358401234567", "Mannerheimintie 1", nil,
				"Helsinki", "00100", "Finland", time.Now(), time.Now(),
			))
		mock.ExpectQuery("SELECT .* FROM order_items oi").
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "order_id", "product_id", "qty", "unit_price",
				"p_id", "p_name", "p_slug", "pi_url",
			}))

		order, err := repo.UpdateStatus(context.Background(), 7, StatusPaid)
		assert.NoError(t, err)
		assert.Equal(t, StatusPaid, order.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IllegalTransitionRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id = \\$1 FOR UPDATE").
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
		mock.ExpectRollback()

		_, err = repo.UpdateStatus(context.Background(), 7, StatusPaid)
		var transition *InvalidTransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, StatusCompleted, transition.From)
		assert.Equal(t, StatusPaid, transition.To)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id = \\$1 FOR UPDATE").
			WithArgs(uint(404)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err = repo.UpdateStatus(context.Background(), 404, StatusPaid)
		assert.Equal(t, ErrOrderNotFound, err)
	})
}
