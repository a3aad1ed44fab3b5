package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/nmarchetti/wearhaus-backend/internal/products"
	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
)

func TestAddItemMergesSameVariantBySummingQuantities(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(2000, "M", "L")
	svc, _ := newTestService(t, product)
	owner := UserOwner(uuid.New())

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 2, Size: "M"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	got, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 3, Size: "M"})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(got.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", got.Items[0].Quantity)
	}
	if got.SubtotalCents != 5*2000 {
		t.Fatalf("unexpected subtotal: %d", got.SubtotalCents)
	}
}

func TestAddItemDistinctVariantsKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1500, "S", "M", "L")
	svc, _ := newTestService(t, product)
	owner := UserOwner(uuid.New())

	for _, size := range []string{"L", "S", "M"} {
		if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 1, Size: size}); err != nil {
			t.Fatalf("add size %s: %v", size, err)
		}
	}

	got, err := svc.Get(context.Background(), owner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 3 {
		t.Fatalf("expected three lines, got %d", len(got.Items))
	}
	for i, want := range []string{"L", "S", "M"} {
		if got.Items[i].Size != want {
			t.Fatalf("line %d: expected size %s, got %s", i, want, got.Items[i].Size)
		}
	}
}

func TestAddItemRejectsQuantityBelowOne(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000)
	svc, _ := newTestService(t, product)

	for _, qty := range []int{0, -3} {
		_, err := svc.AddItem(context.Background(), UserOwner(uuid.New()), AddItemInput{ProductID: product.ID, Quantity: qty})
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("quantity %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestAddItemRejectsMissingRequiredSize(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000, "M", "L")
	svc, _ := newTestService(t, product)

	_, err := svc.AddItem(context.Background(), UserOwner(uuid.New()), AddItemInput{ProductID: product.ID, Quantity: 1})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)

	_, err := svc.AddItem(context.Background(), UserOwner(uuid.New()), AddItemInput{ProductID: uuid.New(), Quantity: 1})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAddItemStampsPriceAtAddTime(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(2500)
	svc, _ := newTestService(t, product)
	owner := GuestOwner("g-price")

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	product.PriceCents = 9900

	got, err := svc.Get(context.Background(), owner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Items[0].PriceCents != 2500 {
		t.Fatalf("expected stamped price 2500, got %d", got.Items[0].PriceCents)
	}
}

func TestUpdateQuantitySetsNewValue(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000, "M")
	svc, _ := newTestService(t, product)
	owner := UserOwner(uuid.New())

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 2, Size: "M"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := svc.UpdateQuantity(context.Background(), owner, VariantKey{ProductID: product.ID, Size: "M"}, 7)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", got.Items[0].Quantity)
	}
}

func TestUpdateQuantityMissingItemIsNotFound(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000, "M")
	svc, _ := newTestService(t, product)
	owner := UserOwner(uuid.New())

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 1, Size: "M"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := svc.UpdateQuantity(context.Background(), owner, VariantKey{ProductID: uuid.New()}, 2)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUpdateQuantityRejectsQuantityBelowOne(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000, "M")
	svc, _ := newTestService(t, product)
	owner := UserOwner(uuid.New())

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 2, Size: "M"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := svc.UpdateQuantity(context.Background(), owner, VariantKey{ProductID: product.ID, Size: "M"}, 0)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRemoveItemDeletesLine(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000, "M", "L")
	svc, _ := newTestService(t, product)
	owner := UserOwner(uuid.New())

	for _, size := range []string{"M", "L"} {
		if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 1, Size: size}); err != nil {
			t.Fatalf("add size %s: %v", size, err)
		}
	}
	got, err := svc.RemoveItem(context.Background(), owner, VariantKey{ProductID: product.ID, Size: "M"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Size != "L" {
		t.Fatalf("expected only the L line to remain, got %+v", got.Items)
	}
}

func TestRemoveItemAbsentVariantIsNoOp(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000, "M")
	svc, _ := newTestService(t, product)
	owner := UserOwner(uuid.New())

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 2, Size: "M"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := svc.RemoveItem(context.Background(), owner, VariantKey{ProductID: uuid.New()})
	if err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("cart changed on absent removal: %+v", got.Items)
	}
}

func TestRemoveItemWithoutCartIsNoOp(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, fixtureProduct(1000))

	got, err := svc.RemoveItem(context.Background(), UserOwner(uuid.New()), VariantKey{ProductID: uuid.New()})
	if err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if !got.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", got.Items)
	}
}

func TestMergeGuestCartSumsAndAppends(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000, "M", "L")
	svc, _ := newTestService(t, product)
	userID := uuid.New()
	guest := GuestOwner("g-merge")

	if _, err := svc.AddItem(context.Background(), UserOwner(userID), AddItemInput{ProductID: product.ID, Quantity: 1, Size: "M"}); err != nil {
		t.Fatalf("user add: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), guest, AddItemInput{ProductID: product.ID, Quantity: 2, Size: "M"}); err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), guest, AddItemInput{ProductID: product.ID, Quantity: 1, Size: "L"}); err != nil {
		t.Fatalf("guest add: %v", err)
	}

	got, err := svc.MergeGuestCartIntoUserCart(context.Background(), "g-merge", userID)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected two lines after merge, got %d", len(got.Items))
	}
	if got.Items[0].Size != "M" || got.Items[0].Quantity != 3 {
		t.Fatalf("expected merged M line with quantity 3, got %+v", got.Items[0])
	}
	if got.Items[1].Size != "L" || got.Items[1].Quantity != 1 {
		t.Fatalf("expected appended L line, got %+v", got.Items[1])
	}

	guestCart, err := svc.Get(context.Background(), guest)
	if err != nil {
		t.Fatalf("guest get: %v", err)
	}
	if !guestCart.IsEmpty() {
		t.Fatalf("expected guest cart emptied, got %+v", guestCart.Items)
	}
}

func TestMergeGuestCartIsIdempotent(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000, "M")
	svc, _ := newTestService(t, product)
	userID := uuid.New()
	guest := GuestOwner("g-idem")

	if _, err := svc.AddItem(context.Background(), UserOwner(userID), AddItemInput{ProductID: product.ID, Quantity: 1, Size: "M"}); err != nil {
		t.Fatalf("user add: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), guest, AddItemInput{ProductID: product.ID, Quantity: 2, Size: "M"}); err != nil {
		t.Fatalf("guest add: %v", err)
	}

	first, err := svc.MergeGuestCartIntoUserCart(context.Background(), "g-idem", userID)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	second, err := svc.MergeGuestCartIntoUserCart(context.Background(), "g-idem", userID)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}

	if len(second.Items) != len(first.Items) {
		t.Fatalf("expected %d lines, got %d", len(first.Items), len(second.Items))
	}
	if second.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3 after repeated merge, got %d", second.Items[0].Quantity)
	}
}

func TestMergeGuestCartRehomesWhenUserHasNoCart(t *testing.T) {
	t.Parallel()

	product := fixtureProduct(1000)
	svc, repo := newTestService(t, product)
	userID := uuid.New()
	guest := GuestOwner("g-rehome")

	if _, err := svc.AddItem(context.Background(), guest, AddItemInput{ProductID: product.ID, Quantity: 4}); err != nil {
		t.Fatalf("guest add: %v", err)
	}

	got, err := svc.MergeGuestCartIntoUserCart(context.Background(), "g-rehome", userID)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 4 {
		t.Fatalf("expected the guest items under the user, got %+v", got.Items)
	}

	stored := repo.cartByID(got.ID)
	if stored == nil || stored.UserID == nil || *stored.UserID != userID || stored.GuestID != nil {
		t.Fatalf("expected cart re-homed to the user, got %+v", stored)
	}
}

func TestGetWithoutCartReturnsEmptyCart(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, fixtureProduct(1000))

	got, err := svc.Get(context.Background(), GuestOwner("g-empty"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsEmpty() || got.SubtotalCents != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}
}

func newTestService(t *testing.T, product *models.Product) (Service, *memCartRepo) {
	t.Helper()
	repo := newMemCartRepo()
	svc, err := NewService(repo, stubTxRunner{}, stubResolver{product: product})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func fixtureProduct(priceCents int64, sizes ...string) *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		Name:       "Oversized Hoodie",
		SKU:        "WH-HOOD-01",
		Category:   "hoodies",
		PriceCents: priceCents,
		Sizes:      pq.StringArray(sizes),
		Images:     pq.StringArray{"https://cdn.example.com/hoodie.jpg"},
		IsActive:   true,
	}
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubResolver struct {
	product *models.Product
}

func (s stubResolver) ResolveForCart(ctx context.Context, productID uuid.UUID, size, color string) (*models.Product, error) {
	if s.product == nil || s.product.ID != productID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err := products.ConstraintsFor(s.product).Validate(size, color); err != nil {
		return nil, err
	}
	return s.product, nil
}

// memCartRepo is an in-memory CartRepository used to exercise multi-step flows.
type memCartRepo struct {
	carts map[uuid.UUID]*models.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[uuid.UUID]*models.Cart{}}
}

func (m *memCartRepo) WithTx(tx *gorm.DB) CartRepository { return m }

func (m *memCartRepo) FindActiveByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	for _, cart := range m.carts {
		if cart.Status != enums.CartStatusActive {
			continue
		}
		if owner.IsUser() && cart.UserID != nil && *cart.UserID == *owner.UserID {
			return m.load(cart.ID), nil
		}
		if !owner.IsUser() && owner.GuestID != nil && cart.GuestID != nil && *cart.GuestID == *owner.GuestID {
			return m.load(cart.ID), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCartRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	if cart := m.load(id); cart != nil {
		return cart, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCartRepo) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if cart.Status == "" {
		cart.Status = enums.CartStatusActive
	}
	m.carts[cart.ID] = cart
	return cart, nil
}

func (m *memCartRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	cart, ok := m.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cart.Items = append([]models.CartItem{}, items...)
	return nil
}

func (m *memCartRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error {
	cart, ok := m.carts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cart.Status = status
	return nil
}

func (m *memCartRepo) AssignUser(ctx context.Context, id, userID uuid.UUID) error {
	cart, ok := m.carts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cart.UserID = &userID
	cart.GuestID = nil
	return nil
}

func (m *memCartRepo) cartByID(id uuid.UUID) *models.Cart {
	return m.carts[id]
}

func (m *memCartRepo) load(id uuid.UUID) *models.Cart {
	cart, ok := m.carts[id]
	if !ok {
		return nil
	}
	copied := *cart
	copied.Items = append([]models.CartItem{}, cart.Items...)
	return &copied
}
