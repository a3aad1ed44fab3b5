package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/nmarchetti/wearhaus-backend/internal/cart"
	"github.com/nmarchetti/wearhaus-backend/internal/orders"
	"github.com/nmarchetti/wearhaus-backend/pkg/config"
	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
	"github.com/nmarchetti/wearhaus-backend/pkg/logger"
	"github.com/nmarchetti/wearhaus-backend/pkg/metrics"
	"github.com/nmarchetti/wearhaus-backend/pkg/outbox"
	"github.com/nmarchetti/wearhaus-backend/pkg/outbox/payloads"
	"github.com/nmarchetti/wearhaus-backend/pkg/square"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type paymentGateway interface {
	CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error)
	CompletePayment(ctx context.Context, paymentID string) (*sq.Payment, error)
	CancelPayment(ctx context.Context, paymentID string) (*sq.Payment, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Input captures one checkout request.
type Input struct {
	SourceID       string
	IdempotencyKey string
}

// Service executes the checkout orchestration.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*orders.OrderDTO, error)
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Tx          txRunner
	CartRepo    cart.CartRepository
	OrderRepo   orders.OrderRepository
	IntentRepo  IntentRepository
	Gateway     paymentGateway
	Outbox      outboxPublisher
	Logger      *logger.Logger
	Metrics     *metrics.CheckoutMetrics
	CheckoutCfg config.CheckoutConfig
}

type service struct {
	tx          txRunner
	cartRepo    cart.CartRepository
	orderRepo   orders.OrderRepository
	intentRepo  IntentRepository
	gateway     paymentGateway
	outbox      outboxPublisher
	logg        *logger.Logger
	checkoutMet *metrics.CheckoutMetrics
	cfg         config.CheckoutConfig
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.IntentRepo == nil {
		return nil, fmt.Errorf("intent repository required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Metrics == nil {
		params.Metrics = metrics.NewCheckoutMetrics(nil)
	}
	return &service{
		tx:          params.Tx,
		cartRepo:    params.CartRepo,
		orderRepo:   params.OrderRepo,
		intentRepo:  params.IntentRepo,
		gateway:     params.Gateway,
		outbox:      params.Outbox,
		logg:        params.Logger,
		checkoutMet: params.Metrics,
		cfg:         params.CheckoutCfg,
	}, nil
}

// Execute charges the user's active cart and materializes the order.
// The payment runs before the transaction: authorize, then capture. Only a
// successful capture reaches the database write, which persists the order,
// finalizes the intent, converts the cart and queues the outbox events
// atomically. Cart item rows are deleted after commit; see clearCartItems.
func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(input.SourceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source is required")
	}

	activeCart, err := s.loadCheckoutCart(ctx, userID)
	if err != nil {
		s.checkoutMet.IncAttempt("rejected")
		return nil, err
	}

	amount := activeCart.SubtotalCents()
	intent, err := s.intentRepo.Create(ctx, &models.PaymentIntent{
		UserID:      userID,
		CartID:      activeCart.ID,
		AmountCents: amount,
		Currency:    activeCart.Currency,
		Status:      enums.PaymentIntentStatusInitiated,
	})
	if err != nil {
		s.checkoutMet.IncAttempt("error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	capture, err := s.chargeIntent(ctx, intent, input)
	if err != nil {
		s.checkoutMet.IncAttempt("payment_failed")
		return nil, err
	}
	s.checkoutMet.IncCapture("captured")

	order, err := orders.CreateFromCart(activeCart, capture)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		intentRepo := s.intentRepo.WithTx(tx)

		// Re-check inside the transaction: a parallel checkout for the
		// same cart loses here instead of double-materializing.
		current, err := cartRepo.FindByID(ctx, activeCart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
		}
		if current.Status != enums.CartStatusActive {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart already processed")
		}

		created, err := orderRepo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		order = created

		if err := intentRepo.MarkCaptured(ctx, intent.ID, created.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize payment intent")
		}
		if err := cartRepo.UpdateStatus(ctx, activeCart.ID, enums.CartStatusConverted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}
		return s.emitCheckoutEvents(ctx, tx, created, activeCart.ID)
	})
	if err != nil {
		// The charge went through but the order did not commit. The
		// intent stays captured with no order id so reconciliation can
		// find it; refunding is an operator decision, not an automatic
		// one.
		s.logg.Error(ctx, "checkout commit failed after capture", err)
		s.checkoutMet.IncAttempt("error")
		return nil, err
	}

	s.clearCartItems(ctx, activeCart.ID)
	s.checkoutMet.IncAttempt("completed")

	return orders.NewOrderDTO(order), nil
}

func (s *service) loadCheckoutCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	activeCart, err := s.cartRepo.FindActiveByOwner(ctx, cart.UserOwner(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(activeCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return activeCart, nil
}

// chargeIntent drives the two-step payment: authorize with delayed capture,
// then complete. Capture is attempted exactly once; on failure the approved
// payment is voided best-effort and the intent parks in capture_failed.
func (s *service) chargeIntent(ctx context.Context, intent *models.PaymentIntent, input Input) (orders.CaptureResult, error) {
	payment, err := s.gateway.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents:    intent.AmountCents,
		Currency:       string(intent.Currency),
		SourceID:       input.SourceID,
		IdempotencyKey: input.IdempotencyKey,
		ReferenceID:    intent.ID.String(),
		Autocomplete:   false,
	})
	if err != nil {
		s.markIntentFailed(ctx, intent.ID, enums.PaymentIntentStatusFailed, err)
		return orders.CaptureResult{}, err
	}

	externalID := stringValue(payment.GetID())
	if err := s.intentRepo.MarkApproved(ctx, intent.ID, externalID); err != nil {
		return orders.CaptureResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record approval")
	}

	captureCtx := ctx
	if s.cfg.CaptureTimeout > 0 {
		var cancel context.CancelFunc
		captureCtx, cancel = context.WithTimeout(ctx, s.cfg.CaptureTimeout)
		defer cancel()
	}
	captured, err := s.gateway.CompletePayment(captureCtx, externalID)
	if err != nil {
		s.checkoutMet.IncCapture("failed")
		s.markIntentFailed(ctx, intent.ID, enums.PaymentIntentStatusCaptureFailed, err)
		if _, cancelErr := s.gateway.CancelPayment(ctx, externalID); cancelErr != nil {
			s.logg.Error(ctx, "void approved payment", cancelErr)
		}
		return orders.CaptureResult{}, err
	}

	return orders.CaptureResult{
		Success:               true,
		ExternalTransactionID: stringValue(captured.GetID()),
		CapturedAt:            time.Now().UTC(),
	}, nil
}

func (s *service) emitCheckoutEvents(ctx context.Context, tx *gorm.DB, order *models.Order, cartID uuid.UUID) error {
	now := time.Now().UTC()
	paidAt := now
	if order.PaidAt != nil {
		paidAt = *order.PaidAt
	}
	actor := &outbox.ActorRef{UserID: order.UserID, Role: string(enums.UserRoleCustomer)}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderPaid,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderPaidEvent{
			OrderID:       order.ID,
			UserID:        order.UserID,
			CartID:        cartID,
			TotalCents:    order.TotalCents,
			Currency:      string(order.Currency),
			TransactionID: order.ExternalTransactionID,
			PaidAt:        paidAt,
		},
		Version:    1,
		OccurredAt: now,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order paid event")
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCartConverted,
		AggregateType: enums.AggregateCart,
		AggregateID:   cartID,
		Actor:         actor,
		Data: payloads.CartConvertedEvent{
			CartID:      cartID,
			UserID:      order.UserID,
			OrderID:     order.ID,
			ConvertedAt: now,
		},
		Version:    1,
		OccurredAt: now,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit cart converted event")
	}
	return nil
}

// clearCartItems deletes the converted cart's item rows after commit. This is
// deliberately outside the order transaction; a failure here leaves inert
// rows on a converted cart that reads never serve, so it is logged and
// swallowed.
func (s *service) clearCartItems(ctx context.Context, cartID uuid.UUID) {
	if err := s.cartRepo.ReplaceItems(ctx, cartID, nil); err != nil {
		s.logg.Error(ctx, "clear converted cart items", err)
	}
}

func (s *service) markIntentFailed(ctx context.Context, intentID uuid.UUID, status enums.PaymentIntentStatus, cause error) {
	reason := cause.Error()
	if typed := pkgerrors.As(cause); typed != nil {
		reason = typed.Message()
	}
	if err := s.intentRepo.MarkFailed(ctx, intentID, status, reason); err != nil {
		s.logg.Error(ctx, "record payment failure", err)
	}
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
