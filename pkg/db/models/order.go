package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
)

// Order is the immutable record materialized from a cart after a successful
// payment capture. Line items are value copies; later catalog edits never
// change an order. Only Status may move after creation.
type Order struct {
	ID                    uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	CartID                *uuid.UUID        `gorm:"column:cart_id;type:uuid;index"`
	Status                enums.OrderStatus `gorm:"column:status;type:text;not null;default:'created'"`
	Currency              enums.Currency    `gorm:"column:currency;not null;default:'USD'"`
	SubtotalCents         int64             `gorm:"column:subtotal_cents;not null"`
	TotalCents            int64             `gorm:"column:total_cents;not null"`
	ExternalTransactionID string            `gorm:"column:external_transaction_id;not null;default:''"`
	PaidAt                *time.Time        `gorm:"column:paid_at"`
	Items                 []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
