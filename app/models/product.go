package models

import "time"

// Product is a catalog entry. Prices are in rupees; OriginalPrice is the
// pre-discount MRP and may be zero.
type Product struct {
	ID            string    `gorm:"primaryKey;size:36"          json:"_id"`
	Name          string    `gorm:"size:255;not null;index"     json:"name"`
	Description   string    `gorm:"type:text"                   json:"description"`
	Category      string    `gorm:"size:100;index"              json:"category"`
	Price         float64   `gorm:"not null;default:0"          json:"price"`
	OriginalPrice float64   `gorm:"default:0"                   json:"originalPrice,omitempty"`
	Stock         int       `gorm:"not null;default:0"          json:"stock"`
	Images        []string  `gorm:"serializer:json"             json:"images"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Discount is the per-unit saving against OriginalPrice, never negative.
func (p Product) Discount() float64 {
	if p.OriginalPrice > p.Price {
		return p.OriginalPrice - p.Price
	}
	return 0
}

func (p Product) InStock() bool { return p.Stock > 0 }

// ProductFilter narrows GET /products.
type ProductFilter struct {
	Category string
	Search   string
}
