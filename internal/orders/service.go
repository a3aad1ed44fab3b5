package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
	"github.com/nmarchetti/wearhaus-backend/pkg/outbox"
	"github.com/nmarchetti/wearhaus-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes order reads and the admin fulfillment transition.
type Service interface {
	GetOrder(ctx context.Context, orderID, callerID uuid.UUID, role enums.UserRole) (*OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	MarkFulfilled(ctx context.Context, orderID uuid.UUID, actor *outbox.ActorRef) (*OrderDTO, error)
}

type service struct {
	repo   OrderRepository
	tx     txRunner
	events outboxEmitter
}

// NewService builds an order service backed by the provided stack.
func NewService(repo OrderRepository, tx txRunner, events outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, events: events}, nil
}

// GetOrder loads one order. Customers only see their own; admins see all.
func (s *service) GetOrder(ctx context.Context, orderID, callerID uuid.UUID, role enums.UserRole) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	if role == enums.UserRoleAdmin {
		found, err := s.repo.FindByID(ctx, orderID)
		if err != nil {
			return nil, mapFindError(err)
		}
		return NewOrderDTO(found), nil
	}

	found, err := s.repo.FindByIDAndUser(ctx, orderID, callerID)
	if err != nil {
		return nil, mapFindError(err)
	}
	return NewOrderDTO(found), nil
}

// ListOrders returns the caller's orders newest first.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return NewOrderListDTO(rows), nil
}

// MarkFulfilled moves a paid order to fulfilled and emits the event in the
// same transaction.
func (s *service) MarkFulfilled(ctx context.Context, orderID uuid.UUID, actor *outbox.ActorRef) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var dto *OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return mapFindError(err)
		}
		if !order.Status.CanTransitionTo(enums.OrderStatusFulfilled) {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("order in status %s cannot be fulfilled", order.Status))
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusFulfilled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		now := time.Now().UTC()
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderFulfilled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderFulfilledEvent{
				OrderID:     order.ID,
				UserID:      order.UserID,
				FulfilledAt: now,
			},
			Version:    1,
			OccurredAt: now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit fulfillment event")
		}

		order.Status = enums.OrderStatusFulfilled
		dto = NewOrderDTO(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func mapFindError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
}
