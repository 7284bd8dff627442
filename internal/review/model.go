package review

import "time"

// Review is one user's rating of a product. A user keeps at most one
// review per product; resubmitting replaces the previous one.
type Review struct {
	ID        uint      `json:"id"`
	ProductID uint      `json:"product_id"`
	UserID    uint      `json:"user_id"`
	Rating    int       `json:"rating"`
	Title     *string   `json:"title,omitempty"`
	Body      *string   `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserName string `json:"user_name,omitempty"`
}

// Summary aggregates a product's reviews for display next to the list.
type Summary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// View is the paginated review payload. MyReview is set only for an
// authenticated requester who has reviewed the product.
type View struct {
	Reviews  []*Review `json:"reviews"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Summary  Summary   `json:"summary"`
	MyReview *Review   `json:"my_review,omitempty"`
}

type UpsertParams struct {
	ProductID uint
	UserID    uint
	Rating    int
	Title     *string
	Body      *string
}
