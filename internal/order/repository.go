package order

import (
	"context"
	"database/sql"
	"sort"

	"shopora-be/internal/logger"
	"shopora-be/internal/metrics"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Checkout(ctx context.Context, userID uint, details ShippingDetails) (*Order, error)
	GetOrders(ctx context.Context, userID uint, page, limit int) ([]*Order, int64, error)
	GetOrderDetail(ctx context.Context, orderID uint) (*Order, error)
	UpdateStatus(ctx context.Context, orderID uint, to Status) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// cartLine is one cart row as read inside the checkout transaction.
type cartLine struct {
	ProductID uint
	Qty       int
}

// lockedProduct is a product row held under FOR UPDATE.
type lockedProduct struct {
	ID       uint
	Name     string
	Price    int64
	Stock    int
	IsActive bool
}

// Checkout converts the user's cart into an order inside a single
// transaction. The product rows referenced by the cart are locked with
// SELECT ... FOR UPDATE, so two checkouts against the same product
// serialize at the lock and the stock check always sees fresh values.
// Any error rolls the whole transaction back.
func (r *repository) Checkout(ctx context.Context, userID uint, details ShippingDetails) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Checkout"),
		zap.Uint("user_id", userID),
	)

	timer := metrics.StartTimer()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// 1. Load the cart's items
	rows, err := tx.QueryContext(ctx, `
		SELECT c.id, ci.product_id, ci.qty
		FROM carts c
		JOIN cart_items ci ON ci.cart_id = c.id
		WHERE c.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}

	var cartID uint
	var lines []cartLine
	for rows.Next() {
		var line cartLine
		if err := rows.Scan(&cartID, &line.ProductID, &line.Qty); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	// 2. Distinct product ids, sorted so concurrent checkouts acquire
	// locks in the same order.
	seen := make(map[uint]bool, len(lines))
	productIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			productIDs = append(productIDs, int64(line.ProductID))
		}
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	// 3. Lock exactly those product rows until commit or rollback.
	rows, err = tx.QueryContext(ctx, `
		SELECT id, name, price, stock, is_active
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Array(productIDs))
	if err != nil {
		return nil, err
	}

	products := make(map[uint]lockedProduct, len(productIDs))
	for rows.Next() {
		var p lockedProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.IsActive); err != nil {
			rows.Close()
			return nil, err
		}
		products[p.ID] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 4. Re-validate each line against the locked rows and price the
	// order from the current catalog price, not the cart snapshot.
	var subtotal int64
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok || !p.IsActive {
			log.Warn("checkout rejected, product unavailable",
				zap.Uint("product_id", line.ProductID),
			)
			return nil, &ProductUnavailableError{ProductName: p.Name}
		}

		if p.Stock < line.Qty {
			log.Warn("checkout rejected, insufficient stock",
				zap.Uint("product_id", p.ID),
				zap.Int("requested", line.Qty),
				zap.Int("stock", p.Stock),
			)
			return nil, &InsufficientStockError{ProductName: p.Name}
		}

		subtotal += int64(line.Qty) * p.Price
	}

	// 5. Shipping is flat zero for now.
	var shippingFee int64
	total := subtotal + shippingFee

	// 6. Insert the order
	order := &Order{
		UserID:       userID,
		Subtotal:     subtotal,
		ShippingFee:  shippingFee,
		Total:        total,
		Status:       StatusPending,
		FullName:     details.FullName,
		Phone:        details.Phone,
		AddressLine1: details.AddressLine1,
		AddressLine2: details.AddressLine2,
		City:         details.City,
		PostalCode:   details.PostalCode,
		Country:      details.Country,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			user_id, subtotal, shipping_fee, total, status,
			full_name, phone, address_line1, address_line2,
			city, postal_code, country
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at
	`,
		order.UserID,
		order.Subtotal,
		order.ShippingFee,
		order.Total,
		order.Status,
		order.FullName,
		order.Phone,
		order.AddressLine1,
		order.AddressLine2,
		order.City,
		order.PostalCode,
		order.Country,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// 7. Insert order items and deduct stock inside the same lock scope.
	for _, line := range lines {
		p := products[line.ProductID]

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, qty, unit_price)
			VALUES ($1, $2, $3, $4)
		`, order.ID, p.ID, line.Qty, p.Price)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2
		`, line.Qty, p.ID)
		if err != nil {
			return nil, err
		}
	}

	// 8. Clear the cart; the cart row itself stays.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = $1
	`, cartID)
	if err != nil {
		return nil, err
	}

	// 9. Commit
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("checkout committed",
		zap.Uint("order_id", order.ID),
		zap.Int64("total", order.Total),
		zap.Duration("duration", timer.Duration()),
	)

	return order, nil
}

func (r *repository) GetOrders(ctx context.Context, userID uint, page, limit int) ([]*Order, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			o.id, o.user_id, o.subtotal, o.shipping_fee, o.total, o.status,
			o.full_name, o.phone, o.address_line1, o.address_line2,
			o.city, o.postal_code, o.country,
			o.created_at, o.updated_at,
			COUNT(oi.id)
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Subtotal, &o.ShippingFee, &o.Total, &o.Status,
			&o.FullName, &o.Phone, &o.AddressLine1, &o.AddressLine2,
			&o.City, &o.PostalCode, &o.Country,
			&o.CreatedAt, &o.UpdatedAt,
			&o.ItemsCount,
		); err != nil {
			return nil, 0, err
		}
		orders = append(orders, &o)
	}

	return orders, total, rows.Err()
}

func (r *repository) GetOrderDetail(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT
			id, user_id, subtotal, shipping_fee, total, status,
			full_name, phone, address_line1, address_line2,
			city, postal_code, country, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.UserID, &o.Subtotal, &o.ShippingFee, &o.Total, &o.Status,
		&o.FullName, &o.Phone, &o.AddressLine1, &o.AddressLine2,
		&o.City, &o.PostalCode, &o.Country, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			oi.id, oi.order_id, oi.product_id, oi.qty, oi.unit_price,
			p.id, p.name, p.slug,
			COALESCE(pi.url, '')
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		LEFT JOIN product_images pi ON pi.product_id = p.id AND pi.is_primary = TRUE
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := OrderItem{Product: &ProductInfo{}}
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Qty, &item.UnitPrice,
			&item.Product.ID, &item.Product.Name, &item.Product.Slug,
			&item.Product.ImageURL,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	o.ItemsCount = len(o.Items)
	return &o, nil
}

// UpdateStatus applies a status transition under a row lock so two
// concurrent updates cannot both read the same current status.
func (r *repository) UpdateStatus(ctx context.Context, orderID uint, to Status) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current Status
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM orders WHERE id = $1 FOR UPDATE
	`, orderID).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if !CanTransition(current, to) {
		return nil, &InvalidTransitionError{From: current, To: to}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, to, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetOrderDetail(ctx, orderID)
}
