package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
)

// PaymentIntent tracks one attempt to charge a cart. ExternalID is the
// payment provider's identifier; intents left in a non-terminal state belong
// to abandoned checkouts and can be expired out of band.
type PaymentIntent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID                 `gorm:"column:user_id;type:uuid;not null;index"`
	CartID        uuid.UUID                 `gorm:"column:cart_id;type:uuid;not null;index"`
	OrderID       *uuid.UUID                `gorm:"column:order_id;type:uuid"`
	ExternalID    string                    `gorm:"column:external_id;not null;default:''"`
	Status        enums.PaymentIntentStatus `gorm:"column:status;type:text;not null;default:'initiated'"`
	AmountCents   int64                     `gorm:"column:amount_cents;not null"`
	Currency      enums.Currency            `gorm:"column:currency;not null;default:'USD'"`
	FailureReason *string                   `gorm:"column:failure_reason"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
