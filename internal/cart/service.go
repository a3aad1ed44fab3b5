package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productResolver interface {
	ResolveForCart(ctx context.Context, productID uuid.UUID, size, color string) (*models.Product, error)
}

// Service exposes cart read and mutation operations for one owner at a time.
type Service interface {
	Get(ctx context.Context, owner Owner) (*CartDTO, error)
	AddItem(ctx context.Context, owner Owner, input AddItemInput) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, owner Owner, key VariantKey, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, owner Owner, key VariantKey) (*CartDTO, error)
	MergeGuestCartIntoUserCart(ctx context.Context, guestID string, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo    CartRepository
	tx      txRunner
	catalog productResolver
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, catalog productResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	return &service{repo: repo, tx: tx, catalog: catalog}, nil
}

// AddItemInput captures one add-to-cart request.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
	Color     string
}

// VariantKey is the identity of one cart line: product plus chosen options.
type VariantKey struct {
	ProductID uuid.UUID
	Size      string
	Color     string
}

func (k VariantKey) normalized() VariantKey {
	k.Size = strings.TrimSpace(k.Size)
	k.Color = strings.TrimSpace(k.Color)
	return k
}

// Get returns the owner's active cart, or an empty cart when none exists.
func (s *service) Get(ctx context.Context, owner Owner) (*CartDTO, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	cart, err := s.repo.FindActiveByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmptyCartDTO(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return NewCartDTO(cart), nil
}

// AddItem validates the variant against the catalog and adds it to the
// owner's active cart, creating the cart on first use. An item with the same
// product, size and color merges by summing quantities; new variants append
// in insertion order. Name, image and unit price are stamped from the catalog
// at add time and do not change afterwards.
func (s *service) AddItem(ctx context.Context, owner Owner, input AddItemInput) (*CartDTO, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.catalog.ResolveForCart(ctx, input.ProductID, input.Size, input.Color)
	if err != nil {
		return nil, err
	}
	size := canonicalOption(product.Sizes, input.Size)
	color := canonicalOption(product.Colors, input.Color)

	var result *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.findOrCreateActive(ctx, repo, owner)
		if err != nil {
			return err
		}

		items := append([]models.CartItem{}, cart.Items...)
		merged := false
		for i := range items {
			if items[i].MatchesVariant(product.ID, size, color) {
				items[i].Quantity += input.Quantity
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, models.CartItem{
				ProductID:  product.ID,
				Name:       product.Name,
				Image:      product.FeaturedImage(),
				PriceCents: product.PriceCents,
				Quantity:   input.Quantity,
				Size:       size,
				Color:      color,
				Position:   nextPosition(items),
			})
		}

		if err := repo.ReplaceItems(ctx, cart.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart items")
		}
		cart.Items = items
		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewCartDTO(result), nil
}

// UpdateQuantity sets the quantity of an existing line item. A quantity below
// one is rejected; removal goes through RemoveItem instead of a zero update.
func (s *service) UpdateQuantity(ctx context.Context, owner Owner, key VariantKey, quantity int) (*CartDTO, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	key = key.normalized()

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindActiveByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		items := append([]models.CartItem{}, cart.Items...)
		idx := indexOfVariant(items, key)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		items[idx].Quantity = quantity

		if err := repo.ReplaceItems(ctx, cart.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart items")
		}
		cart.Items = items
		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewCartDTO(result), nil
}

// RemoveItem deletes a line item. Removing a variant the cart does not hold
// is a no-op and returns the cart unchanged.
func (s *service) RemoveItem(ctx context.Context, owner Owner, key VariantKey) (*CartDTO, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	key = key.normalized()

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindActiveByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		result = cart

		items := append([]models.CartItem{}, cart.Items...)
		idx := indexOfVariant(items, key)
		if idx < 0 {
			return nil
		}
		items = append(items[:idx], items[idx+1:]...)
		resequence(items)

		if err := repo.ReplaceItems(ctx, cart.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart items")
		}
		cart.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return EmptyCartDTO(), nil
	}
	return NewCartDTO(result), nil
}

// MergeGuestCartIntoUserCart folds the guest's active cart into the user's at
// login. Matching variants sum their quantities, new variants append after the
// user's existing lines, and the guest cart is emptied and converted. Running
// the merge again finds an empty guest cart and changes nothing, so a retried
// login is safe.
func (s *service) MergeGuestCartIntoUserCart(ctx context.Context, guestID string, userID uuid.UUID) (*CartDTO, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id is required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		guestCart, err := repo.FindActiveByOwner(ctx, GuestOwner(guestID))
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart")
		}

		userCart, err := repo.FindActiveByOwner(ctx, UserOwner(userID))
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user cart")
		}

		if guestCart == nil || len(guestCart.Items) == 0 {
			result = userCart
			return nil
		}

		// A guest with items but no user cart keeps their cart: it is
		// re-homed to the user instead of copied row by row.
		if userCart == nil {
			if err := repo.AssignUser(ctx, guestCart.ID, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign cart owner")
			}
			guestCart.UserID = &userID
			guestCart.GuestID = nil
			result = guestCart
			return nil
		}

		items := append([]models.CartItem{}, userCart.Items...)
		for _, guestItem := range guestCart.Items {
			idx := indexOfVariant(items, VariantKey{
				ProductID: guestItem.ProductID,
				Size:      guestItem.Size,
				Color:     guestItem.Color,
			})
			if idx >= 0 {
				items[idx].Quantity += guestItem.Quantity
				continue
			}
			appended := guestItem
			appended.Position = nextPosition(items)
			items = append(items, appended)
		}

		if err := repo.ReplaceItems(ctx, userCart.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save merged cart")
		}
		if err := repo.ReplaceItems(ctx, guestCart.ID, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear guest cart")
		}
		if err := repo.UpdateStatus(ctx, guestCart.ID, enums.CartStatusConverted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retire guest cart")
		}

		userCart.Items = items
		result = userCart
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return EmptyCartDTO(), nil
	}
	return NewCartDTO(result), nil
}

func (s *service) findOrCreateActive(ctx context.Context, repo CartRepository, owner Owner) (*models.Cart, error) {
	cart, err := repo.FindActiveByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	fresh := &models.Cart{
		UserID:   owner.UserID,
		GuestID:  owner.GuestID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
	}
	created, err := repo.Create(ctx, fresh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func indexOfVariant(items []models.CartItem, key VariantKey) int {
	for i := range items {
		if items[i].ProductID == key.ProductID &&
			strings.EqualFold(items[i].Size, key.Size) &&
			strings.EqualFold(items[i].Color, key.Color) {
			return i
		}
	}
	return -1
}

func nextPosition(items []models.CartItem) int {
	next := 0
	for _, item := range items {
		if item.Position >= next {
			next = item.Position + 1
		}
	}
	return next
}

func resequence(items []models.CartItem) {
	for i := range items {
		items[i].Position = i
	}
}

// canonicalOption maps a shopper's choice onto the catalog's spelling so the
// identity key stays stable regardless of input casing.
func canonicalOption(offered []string, chosen string) string {
	chosen = strings.TrimSpace(chosen)
	if chosen == "" {
		return ""
	}
	for _, value := range offered {
		if strings.EqualFold(strings.TrimSpace(value), chosen) {
			return strings.TrimSpace(value)
		}
	}
	return chosen
}
