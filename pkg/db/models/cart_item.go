package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one (product, size, color) line in a cart. Two rows with the
// same product but different size/color are distinct; an identical triple is
// merged by summing quantities instead of duplicating the row. Position
// preserves insertion order for display.
type CartItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID     uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	Image      string    `gorm:"column:image;not null;default:''"`
	PriceCents int64     `gorm:"column:price_cents;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`
	Size       string    `gorm:"column:size;not null;default:''"`
	Color      string    `gorm:"column:color;not null;default:''"`
	Position   int       `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// MatchesVariant reports whether the line item carries the given identity key.
func (i CartItem) MatchesVariant(productID uuid.UUID, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}
