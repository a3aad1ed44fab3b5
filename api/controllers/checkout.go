package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/api/middleware"
	"github.com/nmarchetti/wearhaus-backend/api/responses"
	"github.com/nmarchetti/wearhaus-backend/api/validators"
	checkoutsvc "github.com/nmarchetti/wearhaus-backend/internal/checkout"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
	"github.com/nmarchetti/wearhaus-backend/pkg/logger"
)

// Checkout charges the signed-in user's active cart and returns the order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Execute(r.Context(), userID, checkoutsvc.Input{
			SourceID:       body.SourceID,
			IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

type checkoutRequest struct {
	SourceID string `json:"source_id" validate:"required"`
}

func authenticatedUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}
