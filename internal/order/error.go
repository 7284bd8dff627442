package order

import (
	"errors"
	"fmt"
)

var (
	ErrCartEmpty       = errors.New("cart is empty")
	ErrOrderNotFound   = errors.New("order not found")
	ErrForbidden       = errors.New("cannot access others' orders")
	ErrCheckoutTimeout = errors.New("checkout timed out waiting for inventory locks")
)

// ValidationError reports a malformed shipping field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProductUnavailableError marks a cart line whose product was removed or
// deactivated after being added.
type ProductUnavailableError struct {
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	if e.ProductName == "" {
		return "product not available"
	}
	return fmt.Sprintf("product not available: %s", e.ProductName)
}

// InsufficientStockError marks a cart line whose quantity exceeds the
// product's current stock.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for: %s", e.ProductName)
}

// InvalidTransitionError rejects an illegal status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}
