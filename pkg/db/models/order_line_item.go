package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem snapshots one cart line at checkout time.
type OrderLineItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	Image      string    `gorm:"column:image;not null;default:''"`
	PriceCents int64     `gorm:"column:price_cents;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`
	Size       string    `gorm:"column:size;not null;default:''"`
	Color      string    `gorm:"column:color;not null;default:''"`
	Position   int       `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
