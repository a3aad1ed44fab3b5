package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
)

// IntentRepository defines the persistence surface for payment intents.
type IntentRepository interface {
	WithTx(tx *gorm.DB) IntentRepository
	Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error)
	MarkApproved(ctx context.Context, id uuid.UUID, externalID string) error
	MarkCaptured(ctx context.Context, id, orderID uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, status enums.PaymentIntentStatus, reason string) error
}

// Repository is the GORM-backed payment intent store.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a payment intent repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) IntentRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new intent in the initiated state.
func (r *Repository) Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error) {
	if intent.ID == uuid.Nil {
		intent.ID = uuid.New()
	}
	if intent.Status == "" {
		intent.Status = enums.PaymentIntentStatusInitiated
	}
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return nil, err
	}
	return intent, nil
}

// FindByID loads an intent by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := r.db.WithContext(ctx).First(&intent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

// MarkApproved records the provider id after a successful authorization.
func (r *Repository) MarkApproved(ctx context.Context, id uuid.UUID, externalID string) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      enums.PaymentIntentStatusApproved,
			"external_id": externalID,
		}).Error
}

// MarkCaptured finalizes the intent and links the materialized order.
func (r *Repository) MarkCaptured(ctx context.Context, id, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   enums.PaymentIntentStatusCaptured,
			"order_id": orderID,
		}).Error
}

// MarkFailed parks the intent in a terminal failure state with the reason.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, status enums.PaymentIntentStatus, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"failure_reason": reason,
		}).Error
}
