package wishlist

import "time"

// Item is a wishlist entry joined with its product's display data.
type Item struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	Product *ProductInfo `json:"product,omitempty"`
}

type ProductInfo struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Price          int64  `json:"price"`
	CompareAtPrice *int64 `json:"compare_at_price,omitempty"`
	Stock          int    `json:"stock"`
	IsActive       bool   `json:"is_active"`
	ImageURL       string `json:"image_url,omitempty"`
}

// View is the wishlist payload; ProductIDs lets clients mark hearts
// without scanning the item list.
type View struct {
	Items      []*Item `json:"items"`
	ProductIDs []uint  `json:"product_ids"`
}
