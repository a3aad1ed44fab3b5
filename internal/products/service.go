package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/nmarchetti/wearhaus-backend/pkg/db"
	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
)

const (
	defaultPageSize = 12
	maxPageSize     = 60
)

// Service exposes catalog read and admin management operations.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetConstraints(ctx context.Context, id uuid.UUID) (*VariantConstraints, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// ResolveForCart loads an active product and validates the chosen variant.
	ResolveForCart(ctx context.Context, productID uuid.UUID, size, color string) (*models.Product, error)
}

// ListProductsInput captures browse filters and paging.
type ListProductsInput struct {
	Category      string
	Gender        string
	Search        string
	IncludeHidden bool
	Page          int
	PageSize      int
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name         string
	Description  string
	SKU          string
	Brand        string
	Category     string
	Gender       string
	PriceCents   int64
	Sizes        []string
	Colors       []string
	Images       []string
	CountInStock int
	IsActive     bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	SKU          *string
	Brand        *string
	Category     *string
	Gender       *string
	PriceCents   *int64
	Sizes        *[]string
	Colors       *[]string
	Images       *[]string
	CountInStock *int
	IsActive     *bool
}

type service struct {
	repo     ProductRepository
	dbClient *db.Client
}

// NewService constructs a catalog service instance.
func NewService(repo ProductRepository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// GetProduct returns the catalog DTO for a single product.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

// GetConstraints returns the variant constraints for a product.
func (s *service) GetConstraints(ctx context.Context, id uuid.UUID) (*VariantConstraints, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	constraints := ConstraintsFor(product)
	return &constraints, nil
}

// ListProducts returns a filtered catalog page.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	rows, total, err := s.repo.List(ctx, ListQuery{
		Category:      input.Category,
		Gender:        input.Gender,
		Search:        input.Search,
		IncludeHidden: input.IncludeHidden,
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductDTO, len(rows))
	for i := range rows {
		items[i] = *NewProductDTO(&rows[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &ProductListResult{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// CreateProduct inserts a new catalog entry.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductInput(input.Name, input.SKU, input.Category, input.PriceCents, input.CountInStock); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		SKU:          strings.TrimSpace(input.SKU),
		Brand:        strings.TrimSpace(input.Brand),
		Category:     strings.TrimSpace(input.Category),
		Gender:       strings.TrimSpace(input.Gender),
		PriceCents:   input.PriceCents,
		Sizes:        pq.StringArray(normalizeOptions(input.Sizes)),
		Colors:       pq.StringArray(normalizeOptions(input.Colors)),
		Images:       pq.StringArray(input.Images),
		CountInStock: input.CountInStock,
		IsActive:     input.IsActive,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return NewProductDTO(created), nil
}

// UpdateProduct applies the provided mutations and saves the row.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Brand != nil {
		product.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Gender != nil {
		product.Gender = strings.TrimSpace(*input.Gender)
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.Sizes != nil {
		product.Sizes = pq.StringArray(normalizeOptions(*input.Sizes))
	}
	if input.Colors != nil {
		product.Colors = pq.StringArray(normalizeOptions(*input.Colors))
	}
	if input.Images != nil {
		product.Images = pq.StringArray(*input.Images)
	}
	if input.CountInStock != nil {
		product.CountInStock = *input.CountInStock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := validateProductInput(product.Name, product.SKU, product.Category, product.PriceCents, product.CountInStock); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes a catalog entry.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.findProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// ResolveForCart loads an active product and validates the chosen variant.
func (s *service) ResolveForCart(ctx context.Context, productID uuid.UUID, size, color string) (*models.Product, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	if err := ConstraintsFor(product).Validate(size, color); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func validateProductInput(name, sku, category string, priceCents int64, countInStock int) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(sku) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if priceCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if countInStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "count_in_stock cannot be negative")
	}
	return nil
}

func normalizeOptions(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
