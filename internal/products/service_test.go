package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/nmarchetti/wearhaus-backend/pkg/db"
	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
)

func newTestService(repo ProductRepository) Service {
	svc, err := NewService(repo, &db.Client{})
	if err != nil {
		panic(err)
	}
	return svc
}

func TestResolveForCartValidSelection(t *testing.T) {
	t.Parallel()

	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Oxford Shirt",
		SKU:        "OXF-001",
		Category:   "shirts",
		PriceCents: 4500,
		Sizes:      pq.StringArray{"S", "M", "L"},
		Colors:     pq.StringArray{"White", "Blue"},
		IsActive:   true,
	}
	svc := newTestService(&stubProductRepo{product: product})

	got, err := svc.ResolveForCart(context.Background(), product.ID, "M", "White")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != product.ID {
		t.Fatal("expected resolved product to match")
	}
}

func TestResolveForCartInactiveProduct(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: uuid.New(), IsActive: false}
	svc := newTestService(&stubProductRepo{product: product})

	_, err := svc.ResolveForCart(context.Background(), product.ID, "", "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveForCartUnknownVariant(t *testing.T) {
	t.Parallel()

	product := &models.Product{
		ID:       uuid.New(),
		Sizes:    pq.StringArray{"S", "M"},
		IsActive: true,
	}
	svc := newTestService(&stubProductRepo{product: product})

	_, err := svc.ResolveForCart(context.Background(), product.ID, "XXL", "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown size, got %v", err)
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stubProductRepo{findErr: gorm.ErrRecordNotFound})

	_, err := svc.GetProduct(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListProductsNormalizesPaging(t *testing.T) {
	t.Parallel()

	repo := &stubProductRepo{}
	svc := newTestService(repo)

	result, err := svc.ListProducts(context.Background(), ListProductsInput{Page: 0, PageSize: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Page != 1 {
		t.Fatalf("expected page 1, got %d", result.Page)
	}
	if result.PageSize != maxPageSize {
		t.Fatalf("expected page size clamped to %d, got %d", maxPageSize, result.PageSize)
	}
	if repo.lastQuery.Page != 1 || repo.lastQuery.PageSize != maxPageSize {
		t.Fatalf("repo received unnormalized query %+v", repo.lastQuery)
	}
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stubProductRepo{})

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "",
		SKU:        "SKU-1",
		Category:   "shirts",
		PriceCents: 1000,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Shirt",
		SKU:        "SKU-1",
		Category:   "shirts",
		PriceCents: 0,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero price, got %v", err)
	}
}

func TestCreateProductDeduplicatesOptions(t *testing.T) {
	t.Parallel()

	repo := &stubProductRepo{}
	svc := newTestService(repo)

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Tee",
		SKU:        "TEE-1",
		Category:   "shirts",
		PriceCents: 1500,
		Sizes:      []string{"S", " s ", "M", ""},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dto.Sizes) != 2 {
		t.Fatalf("expected deduplicated sizes [S M], got %v", dto.Sizes)
	}
}

type stubProductRepo struct {
	product   *models.Product
	findErr   error
	lastQuery ListQuery
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) ProductRepository { return s }

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.product == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

func (s *stubProductRepo) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if s.product == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

func (s *stubProductRepo) List(ctx context.Context, query ListQuery) ([]models.Product, int64, error) {
	s.lastQuery = query
	return nil, 0, nil
}

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = uuid.New()
	return product, nil
}

func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubProductRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
