package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderPaidEvent signals a captured checkout.
type OrderPaidEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	UserID        uuid.UUID `json:"user_id"`
	CartID        uuid.UUID `json:"cart_id"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transaction_id"`
	PaidAt        time.Time `json:"paid_at"`
}

// OrderFulfilledEvent is emitted when an admin marks an order shipped.
type OrderFulfilledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	FulfilledAt time.Time `json:"fulfilled_at"`
}

// CartConvertedEvent records a cart locked by a successful checkout.
type CartConvertedEvent struct {
	CartID      uuid.UUID `json:"cart_id"`
	UserID      uuid.UUID `json:"user_id"`
	OrderID     uuid.UUID `json:"order_id"`
	ConvertedAt time.Time `json:"converted_at"`
}
