package product

import (
	"time"

	"shopora-be/internal/category"
)

// Prices are stored in minor currency units (cents).
type Product struct {
	ID             uint      `json:"id"`
	CategoryID     uint      `json:"category_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    *string   `json:"description,omitempty"`
	Price          int64     `json:"price"`
	CompareAtPrice *int64    `json:"compare_at_price,omitempty"`
	Stock          int       `json:"stock"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Category *category.Category `json:"category,omitempty"`
	Images   []Image            `json:"images,omitempty"`
}

type Image struct {
	ID        uint   `json:"id"`
	ProductID uint   `json:"product_id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

// PrimaryImage returns the image flagged primary, or the first one.
func (p *Product) PrimaryImage() *Image {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}
