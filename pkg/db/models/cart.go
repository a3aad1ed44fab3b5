package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
)

// Cart holds the mutable shopping state for exactly one owner: either an
// authenticated user or an anonymous guest session, never both.
type Cart struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID       `gorm:"column:user_id;type:uuid;index"`
	GuestID   *string          `gorm:"column:guest_id;index"`
	Status    enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Currency  enums.Currency   `gorm:"column:currency;not null;default:'USD'"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// SubtotalCents sums price x quantity over the line items.
func (c Cart) SubtotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.PriceCents * int64(item.Quantity)
	}
	return total
}
