package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog entry. Sizes and colors declare the variant axes a
// shopper must pick from; an empty array means the axis does not apply.
type Product struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Description  string         `gorm:"column:description;type:text;not null;default:''"`
	SKU          string         `gorm:"column:sku;not null;uniqueIndex"`
	Brand        string         `gorm:"column:brand;not null;default:''"`
	Category     string         `gorm:"column:category;not null;index"`
	Gender       string         `gorm:"column:gender;not null;default:''"`
	PriceCents   int64          `gorm:"column:price_cents;not null"`
	Sizes        pq.StringArray `gorm:"column:sizes;type:text[]"`
	Colors       pq.StringArray `gorm:"column:colors;type:text[]"`
	Images       pq.StringArray `gorm:"column:images;type:text[]"`
	CountInStock int            `gorm:"column:count_in_stock;not null;default:0"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// FeaturedImage returns the first catalog image, if any.
func (p Product) FeaturedImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// HasSizes reports whether the size axis is required for this product.
func (p Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// HasColors reports whether the color axis is required for this product.
func (p Product) HasColors() bool {
	return len(p.Colors) > 0
}
