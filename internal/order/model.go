package order

import "time"

// Order is an immutable record of a completed checkout. Its financial
// fields are frozen at creation and never recomputed.
type Order struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Subtotal    int64     `json:"subtotal"`
	ShippingFee int64     `json:"shipping_fee"`
	Total       int64     `json:"total"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	FullName     string  `json:"full_name"`
	Phone        string  `json:"phone"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`

	Items      []OrderItem `json:"items,omitempty"`
	ItemsCount int         `json:"items_count,omitempty"`
}

// OrderItem references the product as it existed at purchase time.
// UnitPrice is the price actually paid, independent of later changes.
type OrderItem struct {
	ID        uint  `json:"id"`
	OrderID   uint  `json:"order_id"`
	ProductID uint  `json:"product_id"`
	Qty       int   `json:"qty"`
	UnitPrice int64 `json:"unit_price"`

	Product *ProductInfo `json:"product,omitempty"`
}

// ProductInfo is the product display data joined onto an order item.
type ProductInfo struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url,omitempty"`
}

type ShippingDetails struct {
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 *string
	City         string
	PostalCode   string
	Country      string
}
