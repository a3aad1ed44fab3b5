package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
)

// CaptureResult carries the outcome of a payment capture into materialization.
type CaptureResult struct {
	Success               bool
	ExternalTransactionID string
	CapturedAt            time.Time
}

// CreateFromCart materializes an immutable order from the cart's line items.
// Every line is copied by value so later catalog or cart edits cannot touch
// the order. The total is an exact fixed-point sum of price times quantity.
// Status becomes paid only when the capture reports success; a failed capture
// never reaches persistence and surfaces as a payment error here.
func CreateFromCart(cart *models.Cart, capture CaptureResult) (*models.Order, error) {
	if cart == nil || len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if cart.UserID == nil || *cart.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires an authenticated cart")
	}
	if !capture.Success {
		return nil, pkgerrors.New(pkgerrors.CodePayment, "payment capture failed")
	}

	total := decimal.Zero
	items := make([]models.OrderLineItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line has invalid quantity")
		}
		lineTotal := decimal.NewFromInt(line.PriceCents).Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)

		items = append(items, models.OrderLineItem{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Image:      line.Image,
			PriceCents: line.PriceCents,
			Quantity:   line.Quantity,
			Size:       line.Size,
			Color:      line.Color,
			Position:   line.Position,
		})
	}

	paidAt := capture.CapturedAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	cartID := cart.ID

	return &models.Order{
		UserID:                *cart.UserID,
		CartID:                &cartID,
		Status:                enums.OrderStatusPaid,
		Currency:              cart.Currency,
		SubtotalCents:         total.IntPart(),
		TotalCents:            total.IntPart(),
		ExternalTransactionID: capture.ExternalTransactionID,
		PaidAt:                &paidAt,
		Items:                 items,
	}, nil
}
