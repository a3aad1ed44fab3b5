package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/types"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	SKU          string    `json:"sku"`
	Brand        string    `json:"brand,omitempty"`
	Category     string    `json:"category"`
	Gender       string    `json:"gender,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	Price        string    `json:"price"`
	Sizes        []string  `json:"sizes"`
	Colors       []string  `json:"colors"`
	Images       []string  `json:"images"`
	CountInStock int       `json:"count_in_stock"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:           product.ID,
		Name:         product.Name,
		Description:  product.Description,
		SKU:          product.SKU,
		Brand:        product.Brand,
		Category:     product.Category,
		Gender:       product.Gender,
		PriceCents:   product.PriceCents,
		Price:        types.CentsToString(product.PriceCents),
		Sizes:        append([]string{}, product.Sizes...),
		Colors:       append([]string{}, product.Colors...),
		Images:       append([]string{}, product.Images...),
		CountInStock: product.CountInStock,
		IsActive:     product.IsActive,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}

// ProductListResult wraps a page of catalog results.
type ProductListResult struct {
	Items      []ProductDTO `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
	TotalPages int          `json:"total_pages"`
}
