package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	"github.com/nmarchetti/wearhaus-backend/pkg/types"
)

// OrderLineItemDTO is one snapshotted line of an order payload.
type OrderLineItemDTO struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Image      string    `json:"image,omitempty"`
	PriceCents int64     `json:"price_cents"`
	Price      string    `json:"price"`
	Quantity   int       `json:"quantity"`
	Size       string    `json:"size,omitempty"`
	Color      string    `json:"color,omitempty"`
	LineCents  int64     `json:"line_cents"`
	LineTotal  string    `json:"line_total"`
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID                    uuid.UUID          `json:"id"`
	Status                enums.OrderStatus  `json:"status"`
	Currency              enums.Currency     `json:"currency"`
	SubtotalCents         int64              `json:"subtotal_cents"`
	Subtotal              string             `json:"subtotal"`
	TotalCents            int64              `json:"total_cents"`
	Total                 string             `json:"total"`
	ExternalTransactionID string             `json:"external_transaction_id,omitempty"`
	PaidAt                *time.Time         `json:"paid_at,omitempty"`
	Items                 []OrderLineItemDTO `json:"items"`
	CreatedAt             time.Time          `json:"created_at"`
}

// NewOrderDTO builds a DTO from the persisted order.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:                    order.ID,
		Status:                order.Status,
		Currency:              order.Currency,
		SubtotalCents:         order.SubtotalCents,
		Subtotal:              types.CentsToString(order.SubtotalCents),
		TotalCents:            order.TotalCents,
		Total:                 types.CentsToString(order.TotalCents),
		ExternalTransactionID: order.ExternalTransactionID,
		PaidAt:                order.PaidAt,
		Items:                 make([]OrderLineItemDTO, 0, len(order.Items)),
		CreatedAt:             order.CreatedAt,
	}
	for _, item := range order.Items {
		lineCents := types.LineTotalCents(item.PriceCents, item.Quantity)
		dto.Items = append(dto.Items, OrderLineItemDTO{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Image:      item.Image,
			PriceCents: item.PriceCents,
			Price:      types.CentsToString(item.PriceCents),
			Quantity:   item.Quantity,
			Size:       item.Size,
			Color:      item.Color,
			LineCents:  lineCents,
			LineTotal:  types.CentsToString(lineCents),
		})
	}
	return dto
}

// NewOrderListDTO maps a page of orders.
func NewOrderListDTO(orders []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *NewOrderDTO(&orders[i]))
	}
	return out
}
