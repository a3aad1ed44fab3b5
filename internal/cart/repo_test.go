package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  guest_id TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  currency TEXT NOT NULL DEFAULT 'USD',
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  size TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(carts).Error)
	require.NoError(t, conn.Exec(cartItems).Error)
	return conn
}

func TestRepositoryCreateAndFindActiveByOwner(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	created, err := repo.Create(ctx, &models.Cart{UserID: &userID})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, enums.CartStatusActive, created.Status)
	assert.Equal(t, enums.CurrencyUSD, created.Currency)

	found, err := repo.FindActiveByOwner(ctx, UserOwner(userID))
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindActiveByOwner(ctx, UserOwner(uuid.New()))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindActiveByOwnerSkipsConvertedCarts(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	guestID := "guest-converted"

	created, err := repo.Create(ctx, &models.Cart{GuestID: &guestID})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, created.ID, enums.CartStatusConverted))

	_, err = repo.FindActiveByOwner(ctx, GuestOwner(guestID))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryReplaceItemsOrdersByPosition(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	guestID := "guest-items"

	created, err := repo.Create(ctx, &models.Cart{GuestID: &guestID})
	require.NoError(t, err)

	items := []models.CartItem{
		{ProductID: uuid.New(), Name: "Denim Jacket", PriceCents: 4500, Quantity: 1, Position: 1},
		{ProductID: uuid.New(), Name: "Graphic Tee", PriceCents: 1500, Quantity: 2, Position: 0},
	}
	require.NoError(t, repo.ReplaceItems(ctx, created.ID, items))

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Graphic Tee", found.Items[0].Name)
	assert.Equal(t, "Denim Jacket", found.Items[1].Name)

	require.NoError(t, repo.ReplaceItems(ctx, created.ID, nil))
	found, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Items)
}

func TestRepositoryAssignUser(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	guestID := "guest-assign"
	userID := uuid.New()

	created, err := repo.Create(ctx, &models.Cart{GuestID: &guestID})
	require.NoError(t, err)
	require.NoError(t, repo.AssignUser(ctx, created.ID, userID))

	found, err := repo.FindActiveByOwner(ctx, UserOwner(userID))
	require.NoError(t, err)
	require.NotNil(t, found.UserID)
	assert.Equal(t, userID, *found.UserID)
	assert.Nil(t, found.GuestID)

	_, err = repo.FindActiveByOwner(ctx, GuestOwner(guestID))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
