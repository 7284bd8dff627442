package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"shopora-be/internal/cart"
	"shopora-be/internal/events"
	"shopora-be/internal/logger"
	"shopora-be/internal/metrics"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// pqLockNotAvailable is the Postgres error code raised when a lock
// cannot be acquired before the configured timeout.
const pqLockNotAvailable = "55P03"

type Service interface {
	Checkout(ctx context.Context, userID uint, details ShippingDetails, idempotencyKey string) (*Order, error)
	GetOrders(ctx context.Context, userID uint, page int) ([]*Order, int64, error)
	GetOrderDetail(ctx context.Context, orderID, userID uint, isAdmin bool) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, to Status) (*Order, error)
}

type service struct {
	repo            Repository
	cartRepo        cart.Repository
	idem            IdempotencyStore
	publisher       events.Publisher
	checkoutTimeout time.Duration
	defaultCountry  string
}

func NewService(
	repo Repository,
	cartRepo cart.Repository,
	idem IdempotencyStore,
	publisher events.Publisher,
	checkoutTimeout time.Duration,
	defaultCountry string,
) Service {
	return &service{
		repo:            repo,
		cartRepo:        cartRepo,
		idem:            idem,
		publisher:       publisher,
		checkoutTimeout: checkoutTimeout,
		defaultCountry:  defaultCountry,
	}
}

// Checkout validates the request, then runs the cart-to-order conversion
// under a deadline. A repeated idempotency key short-circuits to the
// order it already produced.
func (s *service) Checkout(ctx context.Context, userID uint, details ShippingDetails, idempotencyKey string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.Uint("user_id", userID),
	)

	metrics.CheckoutAttempts.Inc()

	if details.Country == "" {
		details.Country = s.defaultCountry
	}
	if err := validateShipping(details); err != nil {
		return nil, err
	}

	// 1. Replay detection before touching the cart.
	if idempotencyKey != "" {
		orderID, found, err := s.idem.Get(ctx, userID, idempotencyKey)
		if err != nil {
			log.Warn("idempotency lookup failed, proceeding", zap.Error(err))
		} else if found {
			log.Info("idempotent checkout replay", zap.Uint("order_id", orderID))
			return s.repo.GetOrderDetail(ctx, orderID)
		}
	}

	// 2. Reject an empty cart without opening a transaction.
	count, err := s.cartRepo.CountItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCartEmpty
	}

	// 3. Convert under a deadline so a stuck lock cannot hold the
	// request forever.
	checkoutCtx, cancel := context.WithTimeout(ctx, s.checkoutTimeout)
	defer cancel()

	order, err := s.repo.Checkout(checkoutCtx, userID, details)
	if err != nil {
		return nil, s.mapCheckoutError(err)
	}

	metrics.CheckoutSuccesses.Inc()

	detail, err := s.repo.GetOrderDetail(ctx, order.ID)
	if err != nil {
		// The order is committed; return what we have.
		log.Warn("order detail reload failed", zap.Uint("order_id", order.ID), zap.Error(err))
		detail = order
	}

	// 4. Post-commit side effects are best effort.
	if idempotencyKey != "" {
		if err := s.idem.Set(ctx, userID, idempotencyKey, order.ID); err != nil {
			log.Warn("idempotency save failed", zap.Error(err))
		}
	}

	publishCtx, publishCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer publishCancel()
	_ = s.publisher.PublishOrderCreated(publishCtx, events.OrderCreatedEvent{
		OrderID:    detail.ID,
		UserID:     detail.UserID,
		Total:      detail.Total,
		ItemsCount: detail.ItemsCount,
		CreatedAt:  detail.CreatedAt,
	})

	return detail, nil
}

// mapCheckoutError folds lock timeouts and deadline expiry into a single
// retryable timeout error and counts conflict rejections.
func (s *service) mapCheckoutError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqLockNotAvailable {
		metrics.CheckoutTimeouts.Inc()
		return ErrCheckoutTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		metrics.CheckoutTimeouts.Inc()
		return ErrCheckoutTimeout
	}

	var unavailable *ProductUnavailableError
	var stock *InsufficientStockError
	if errors.As(err, &unavailable) || errors.As(err, &stock) {
		metrics.CheckoutConflicts.Inc()
	}

	return err
}

func (s *service) GetOrders(ctx context.Context, userID uint, page int) ([]*Order, int64, error) {
	return s.repo.GetOrders(ctx, userID, page, 10)
}

func (s *service) GetOrderDetail(ctx context.Context, orderID, userID uint, isAdmin bool) (*Order, error) {
	order, err := s.repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && order.UserID != userID {
		return nil, ErrForbidden
	}

	return order, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID uint, to Status) (*Order, error) {
	if !ValidStatus(to) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status"}
	}

	order, err := s.repo.UpdateStatus(ctx, orderID, to)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order status updated",
		zap.String("layer", "service"),
		zap.Uint("order_id", orderID),
		zap.String("status", string(to)),
	)

	return order, nil
}

func validateShipping(d ShippingDetails) error {
	type field struct {
		name  string
		value string
	}

	required := []field{
		{"full_name", d.FullName},
		{"phone", d.Phone},
		{"address_line1", d.AddressLine1},
		{"city", d.City},
		{"postal_code", d.PostalCode},
		{"country", d.Country},
	}

	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Reason: "required"}
		}
	}

	if len(d.FullName) > 120 {
		return &ValidationError{Field: "full_name", Reason: "must be at most 120 characters"}
	}
	if len(d.Phone) > 30 {
		return &ValidationError{Field: "phone", Reason: "must be at most 30 characters"}
	}
	if len(d.AddressLine1) > 255 {
		return &ValidationError{Field: "address_line1", Reason: "must be at most 255 characters"}
	}
	if d.AddressLine2 != nil && len(*d.AddressLine2) > 255 {
		return &ValidationError{Field: "address_line2", Reason: "must be at most 255 characters"}
	}
	if len(d.City) > 100 {
		return &ValidationError{Field: "city", Reason: "must be at most 100 characters"}
	}
	if len(d.PostalCode) > 20 {
		return &ValidationError{Field: "postal_code", Reason: "must be at most 20 characters"}
	}
	if len(d.Country) > 100 {
		return &ValidationError{Field: "country", Reason: "must be at most 100 characters"}
	}

	return nil
}
