package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/api/middleware"
	"github.com/nmarchetti/wearhaus-backend/api/responses"
	"github.com/nmarchetti/wearhaus-backend/api/validators"
	productssvc "github.com/nmarchetti/wearhaus-backend/internal/products"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
	"github.com/nmarchetti/wearhaus-backend/pkg/logger"
	"github.com/nmarchetti/wearhaus-backend/pkg/types"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductsList returns a filtered catalog page. Hidden products only show
// up for admins.
func ProductsList(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "page_size", defaultPageSize, 1, maxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isAdmin := middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin)
		result, err := svc.ListProducts(r.Context(), productssvc.ListProductsInput{
			Category:      validators.SanitizeString(r.URL.Query().Get("category"), 64),
			Gender:        validators.SanitizeString(r.URL.Query().Get("gender"), 32),
			Search:        validators.SanitizeString(r.URL.Query().Get("q"), 128),
			IncludeHidden: isAdmin,
			Page:          page,
			PageSize:      pageSize,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductsGet returns one catalog entry.
func ProductsGet(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductsConstraints reports which variant axes a product requires and the
// offered values, so the storefront can validate before submitting.
func ProductsConstraints(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		constraints, err := svc.GetConstraints(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, constraints)
	}
}

// ProductsCreate adds a catalog entry. Admin only.
func ProductsCreate(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductsUpdate mutates a catalog entry. Admin only.
func ProductsUpdate(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductsDelete removes a catalog entry. Admin only.
func ProductsDelete(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createProductRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"omitempty,max=4000"`
	SKU          string   `json:"sku" validate:"required,max=64"`
	Brand        string   `json:"brand" validate:"omitempty,max=100"`
	Category     string   `json:"category" validate:"required,max=64"`
	Gender       string   `json:"gender" validate:"omitempty,max=32"`
	Price        string   `json:"price" validate:"required"`
	Sizes        []string `json:"sizes" validate:"omitempty,dive,max=32"`
	Colors       []string `json:"colors" validate:"omitempty,dive,max=32"`
	Images       []string `json:"images" validate:"omitempty,dive,max=512"`
	CountInStock int      `json:"count_in_stock" validate:"min=0"`
	IsActive     *bool    `json:"is_active"`
}

func (r createProductRequest) toInput() (productssvc.CreateProductInput, error) {
	priceCents, err := types.ParsePriceToCents(r.Price)
	if err != nil {
		return productssvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return productssvc.CreateProductInput{
		Name:         r.Name,
		Description:  r.Description,
		SKU:          r.SKU,
		Brand:        r.Brand,
		Category:     r.Category,
		Gender:       r.Gender,
		PriceCents:   priceCents,
		Sizes:        r.Sizes,
		Colors:       r.Colors,
		Images:       r.Images,
		CountInStock: r.CountInStock,
		IsActive:     active,
	}, nil
}

type updateProductRequest struct {
	Name         *string   `json:"name" validate:"omitempty,max=200"`
	Description  *string   `json:"description" validate:"omitempty,max=4000"`
	SKU          *string   `json:"sku" validate:"omitempty,max=64"`
	Brand        *string   `json:"brand" validate:"omitempty,max=100"`
	Category     *string   `json:"category" validate:"omitempty,max=64"`
	Gender       *string   `json:"gender" validate:"omitempty,max=32"`
	Price        *string   `json:"price"`
	Sizes        *[]string `json:"sizes" validate:"omitempty,dive,max=32"`
	Colors       *[]string `json:"colors" validate:"omitempty,dive,max=32"`
	Images       *[]string `json:"images" validate:"omitempty,dive,max=512"`
	CountInStock *int      `json:"count_in_stock" validate:"omitempty,min=0"`
	IsActive     *bool     `json:"is_active"`
}

func (r updateProductRequest) toInput() (productssvc.UpdateProductInput, error) {
	input := productssvc.UpdateProductInput{
		Name:         r.Name,
		Description:  r.Description,
		SKU:          r.SKU,
		Brand:        r.Brand,
		Category:     r.Category,
		Gender:       r.Gender,
		Sizes:        r.Sizes,
		Colors:       r.Colors,
		Images:       r.Images,
		CountInStock: r.CountInStock,
		IsActive:     r.IsActive,
	}
	if r.Price != nil {
		priceCents, err := types.ParsePriceToCents(*r.Price)
		if err != nil {
			return productssvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
		}
		input.PriceCents = &priceCents
	}
	return input, nil
}

func productIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "productID"))
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
