package cart

import "time"

type Cart struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem carries the price snapshotted when the product was added.
// The snapshot is display-only; checkout always charges the current
// catalog price.
type CartItem struct {
	ID        uint      `json:"id"`
	CartID    uint      `json:"cart_id"`
	ProductID uint      `json:"product_id"`
	Qty       int       `json:"qty"`
	UnitPrice int64     `json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *ProductInfo `json:"product,omitempty"`
}

// ProductInfo is the product display data joined onto a cart item.
type ProductInfo struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
	IsActive bool   `json:"is_active"`
	ImageURL string `json:"image_url,omitempty"`
}

type AddItemParams struct {
	UserID    uint
	ProductID uint
	Qty       int
}

type UpdateItemParams struct {
	UserID uint
	ItemID uint
	Qty    int
}
