package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/internal/auth"
	"github.com/nmarchetti/wearhaus-backend/internal/cart"
	"github.com/nmarchetti/wearhaus-backend/internal/checkout"
	"github.com/nmarchetti/wearhaus-backend/internal/orders"
	"github.com/nmarchetti/wearhaus-backend/internal/products"
	pkgauth "github.com/nmarchetti/wearhaus-backend/pkg/auth"
	"github.com/nmarchetti/wearhaus-backend/pkg/config"
	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
	"github.com/nmarchetti/wearhaus-backend/pkg/logger"
	"github.com/nmarchetti/wearhaus-backend/pkg/outbox"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct {
	loginGuestID string
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest, guestID string) (*auth.AuthResponse, error) {
	s.loginGuestID = guestID
	return &auth.AuthResponse{}, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenPairResponse, error) {
	return &auth.TokenPairResponse{}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error { return nil }

type stubCartService struct {
	lastOwner cart.Owner
}

func (s *stubCartService) Get(ctx context.Context, owner cart.Owner) (*cart.CartDTO, error) {
	s.lastOwner = owner
	return cart.EmptyCartDTO(), nil
}

func (s *stubCartService) AddItem(ctx context.Context, owner cart.Owner, input cart.AddItemInput) (*cart.CartDTO, error) {
	s.lastOwner = owner
	return cart.EmptyCartDTO(), nil
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, owner cart.Owner, key cart.VariantKey, quantity int) (*cart.CartDTO, error) {
	return cart.EmptyCartDTO(), nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, owner cart.Owner, key cart.VariantKey) (*cart.CartDTO, error) {
	return cart.EmptyCartDTO(), nil
}

func (s *stubCartService) MergeGuestCartIntoUserCart(ctx context.Context, guestID string, userID uuid.UUID) (*cart.CartDTO, error) {
	return cart.EmptyCartDTO(), nil
}

type stubProductService struct{}

func (stubProductService) GetProduct(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubProductService) GetConstraints(ctx context.Context, id uuid.UUID) (*products.VariantConstraints, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubProductService) ListProducts(ctx context.Context, input products.ListProductsInput) (*products.ProductListResult, error) {
	return &products.ProductListResult{Items: []products.ProductDTO{}}, nil
}

func (stubProductService) CreateProduct(ctx context.Context, input products.CreateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (stubProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, input products.UpdateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (stubProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error { return nil }

func (stubProductService) ResolveForCart(ctx context.Context, productID uuid.UUID, size, color string) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type stubCheckoutService struct{}

func (stubCheckoutService) Execute(ctx context.Context, userID uuid.UUID, input checkout.Input) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) GetOrder(ctx context.Context, orderID, callerID uuid.UUID, role enums.UserRole) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) ListOrders(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error) {
	return nil, nil
}

func (stubOrdersService) MarkFulfilled(ctx context.Context, orderID uuid.UUID, actor *outbox.ActorRef) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "wearhaus-test",
			ExpirationMinutes: 30,
		},
	}
}

type routerEnv struct {
	handler http.Handler
	cfg     *config.Config
	auth    *stubAuthService
	carts   *stubCartService
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	cfg := testRouterConfig()
	authSvc := &stubAuthService{}
	cartSvc := &stubCartService{}
	handler := NewRouter(Deps{
		Config:         cfg,
		Logger:         logger.New(logger.Options{}),
		DB:             stubPinger{},
		SessionChecker: stubSessionChecker{},
		AuthService:    authSvc,
		ProductService: stubProductService{},
		CartService:    cartSvc,
		CheckoutSvc:    stubCheckoutService{},
		OrdersService:  stubOrdersService{},
	})
	return &routerEnv{handler: handler, cfg: cfg, auth: authSvc, carts: cartSvc}
}

func (e *routerEnv) token(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(e.cfg.JWT, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	env := newRouterEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Wearhaus-Env"); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestCartRequiresIdentity(t *testing.T) {
	env := newRouterEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without guest id or token, got %d", w.Code)
	}
}

func TestCartAcceptsGuestHeader(t *testing.T) {
	env := newRouterEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Guest-Id", "g-123")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.carts.lastOwner.GuestID == nil || *env.carts.lastOwner.GuestID != "g-123" {
		t.Fatalf("expected guest owner, got %+v", env.carts.lastOwner)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	env := newRouterEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	env := newRouterEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/"+uuid.NewString()+"/fulfill", nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t, enums.UserRoleCustomer))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAdminFulfillAllowsAdmins(t *testing.T) {
	env := newRouterEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/"+uuid.NewString()+"/fulfill", nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t, enums.UserRoleAdmin))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginPassesGuestIDThrough(t *testing.T) {
	env := newRouterEnv(t)

	body := strings.NewReader(`{"email":"shopper@example.com","password":"longenough1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "g-merge-me")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.auth.loginGuestID != "g-merge-me" {
		t.Fatalf("expected guest id forwarded to login, got %q", env.auth.loginGuestID)
	}
}

func TestCheckoutCreatesOrder(t *testing.T) {
	env := newRouterEnv(t)

	body := strings.NewReader(`{"source_id":"cnon:ok"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.token(t, enums.UserRoleCustomer))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode success envelope: %v", err)
	}
	if len(envelope.Data) == 0 {
		t.Fatal("expected order payload in envelope")
	}
}
