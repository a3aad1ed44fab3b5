package cart

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	"github.com/nmarchetti/wearhaus-backend/pkg/types"
)

// CartItemDTO is one line of the cart payload returned to clients.
type CartItemDTO struct {
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

// CartDTO is the cart payload returned to clients. Items keep insertion order.
type CartDTO struct {
	ID            uuid.UUID        `json:"id"`
	Status        enums.CartStatus `json:"status"`
	Currency      enums.Currency   `json:"currency"`
	Items         []CartItemDTO    `json:"items"`
	SubtotalCents int64            `json:"subtotal_cents"`
	Subtotal      string           `json:"subtotal"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// IsEmpty reports whether the cart has no line items.
func (c CartDTO) IsEmpty() bool {
	return len(c.Items) == 0
}

// NewCartDTO builds a DTO from the persisted cart, ordered by item position.
func NewCartDTO(cart *models.Cart) *CartDTO {
	items := append([]models.CartItem{}, cart.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})

	dto := &CartDTO{
		ID:        cart.ID,
		Status:    cart.Status,
		Currency:  cart.Currency,
		Items:     make([]CartItemDTO, 0, len(items)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range items {
		lineCents := types.LineTotalCents(item.PriceCents, item.Quantity)
		dto.Items = append(dto.Items, CartItemDTO{
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
		dto.SubtotalCents += lineCents
	}
	dto.Subtotal = types.CentsToString(dto.SubtotalCents)
	return dto
}

// EmptyCartDTO is returned when the owner has no active cart yet.
func EmptyCartDTO() *CartDTO {
	return &CartDTO{
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Items:    []CartItemDTO{},
		Subtotal: types.CentsToString(0),
	}
}
