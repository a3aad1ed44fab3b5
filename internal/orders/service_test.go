package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
	"github.com/nmarchetti/wearhaus-backend/pkg/outbox"
)

func TestGetOrderScopedToOwner(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: ownerID, Status: enums.OrderStatusPaid}
	svc := newTestOrderService(t, &stubOrderRepo{order: order}, &stubEmitter{})

	got, err := svc.GetOrder(context.Background(), order.ID, ownerID, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("get as owner: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("unexpected order: %+v", got)
	}

	_, err = svc.GetOrder(context.Background(), order.ID, uuid.New(), enums.UserRoleCustomer)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for stranger, got %v", err)
	}
}

func TestGetOrderAdminSeesAll(t *testing.T) {
	t.Parallel()

	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusPaid}
	svc := newTestOrderService(t, &stubOrderRepo{order: order}, &stubEmitter{})

	got, err := svc.GetOrder(context.Background(), order.ID, uuid.New(), enums.UserRoleAdmin)
	if err != nil {
		t.Fatalf("get as admin: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestMarkFulfilledEmitsEvent(t *testing.T) {
	t.Parallel()

	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusPaid}
	repo := &stubOrderRepo{order: order}
	emitter := &stubEmitter{}
	svc := newTestOrderService(t, repo, emitter)

	got, err := svc.MarkFulfilled(context.Background(), order.ID, nil)
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if got.Status != enums.OrderStatusFulfilled {
		t.Fatalf("expected fulfilled, got %s", got.Status)
	}
	if repo.updatedStatus != enums.OrderStatusFulfilled {
		t.Fatalf("expected repo status update, got %s", repo.updatedStatus)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderFulfilled {
		t.Fatalf("expected one fulfillment event, got %+v", emitter.events)
	}
}

func TestMarkFulfilledRejectsNonPaidOrder(t *testing.T) {
	t.Parallel()

	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusFulfilled}
	svc := newTestOrderService(t, &stubOrderRepo{order: order}, &stubEmitter{})

	_, err := svc.MarkFulfilled(context.Background(), order.ID, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func newTestOrderService(t *testing.T, repo OrderRepository, emitter *stubEmitter) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, emitter)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOrderRepo struct {
	order         *models.Order
	updatedStatus enums.OrderStatus
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) OrderRepository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order != nil && s.order.ID == id {
		return s.order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	if s.order != nil && s.order.ID == id && s.order.UserID == userID {
		return s.order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if s.order != nil && s.order.UserID == userID {
		return []models.Order{*s.order}, nil
	}
	return nil, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	s.updatedStatus = status
	return nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}
