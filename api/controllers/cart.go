package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/api/middleware"
	"github.com/nmarchetti/wearhaus-backend/api/responses"
	"github.com/nmarchetti/wearhaus-backend/api/validators"
	cartsvc "github.com/nmarchetti/wearhaus-backend/internal/cart"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
	"github.com/nmarchetti/wearhaus-backend/pkg/logger"
)

// CartGet returns the caller's active cart, or an empty cart when none exists.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Get(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartAddItem adds a product variant to the cart, summing quantities when the
// same variant is already present.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), owner, cartsvc.AddItemInput{
			ProductID: body.ProductID,
			Quantity:  body.Quantity,
			Size:      body.Size,
			Color:     body.Color,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartUpdateItem sets the quantity of one cart line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := cartsvc.VariantKey{ProductID: body.ProductID, Size: body.Size, Color: body.Color}
		cart, err := svc.UpdateQuantity(r.Context(), owner, key, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartRemoveItem deletes one cart line. Removing a variant that is not in
// the cart succeeds and returns the cart unchanged.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("product_id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		key := cartsvc.VariantKey{
			ProductID: productID,
			Size:      validators.SanitizeString(r.URL.Query().Get("size"), 32),
			Color:     validators.SanitizeString(r.URL.Query().Get("color"), 32),
		}
		cart, err := svc.RemoveItem(r.Context(), owner, key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Size      string    `json:"size" validate:"omitempty,max=32"`
	Color     string    `json:"color" validate:"omitempty,max=32"`
}

type updateCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Size      string    `json:"size" validate:"omitempty,max=32"`
	Color     string    `json:"color" validate:"omitempty,max=32"`
}

// cartOwner resolves the cart identity: a signed-in user when the request
// passed Auth, otherwise the storefront guest id.
func cartOwner(r *http.Request) (cartsvc.Owner, error) {
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return cartsvc.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
		}
		return cartsvc.UserOwner(userID), nil
	}
	if guestID := middleware.GuestIDFromContext(r.Context()); guestID != "" {
		return cartsvc.GuestOwner(guestID), nil
	}
	return cartsvc.Owner{}, pkgerrors.New(pkgerrors.CodeValidation, "guest id or credentials required")
}
