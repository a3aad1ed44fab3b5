package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nmarchetti/wearhaus-backend/api/controllers"
	"github.com/nmarchetti/wearhaus-backend/api/middleware"
	"github.com/nmarchetti/wearhaus-backend/internal/auth"
	"github.com/nmarchetti/wearhaus-backend/internal/cart"
	checkoutsvc "github.com/nmarchetti/wearhaus-backend/internal/checkout"
	"github.com/nmarchetti/wearhaus-backend/internal/orders"
	"github.com/nmarchetti/wearhaus-backend/internal/products"
	"github.com/nmarchetti/wearhaus-backend/pkg/auth/session"
	"github.com/nmarchetti/wearhaus-backend/pkg/config"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	"github.com/nmarchetti/wearhaus-backend/pkg/logger"
	"github.com/nmarchetti/wearhaus-backend/pkg/metrics"
	pkgredis "github.com/nmarchetti/wearhaus-backend/pkg/redis"
)

type pinger interface {
	Ping(context.Context) error
}

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             pinger
	Redis          *pkgredis.Client
	SessionChecker session.AccessSessionChecker
	AuthService    auth.Service
	ProductService products.Service
	CartService    cart.Service
	CheckoutSvc    checkoutsvc.Service
	OrdersService  orders.Service
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	var limiter middleware.WindowLimiter
	var idemStore pkgredis.IdempotencyStore
	var cache pinger
	if deps.Redis != nil {
		limiter = deps.Redis
		idemStore = deps.Redis
		cache = deps.Redis
	}

	loginPolicy := middleware.AuthRateLimitPolicy{
		Name:    "login",
		Window:  cfg.Checkout.LoginWindow,
		IPLimit: cfg.Checkout.LoginIPLimit,
	}
	registerPolicy := middleware.AuthRateLimitPolicy{
		Name:    "register",
		Window:  cfg.Checkout.RegisterWindow,
		IPLimit: cfg.Checkout.RegisterIPLimit,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cache, logg))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, limiter, logg),
			middleware.Idempotency(idemStore, cfg.Checkout.IdempotencyTTL, logg),
		).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(
			middleware.AuthRateLimit(loginPolicy, limiter, logg),
			middleware.GuestID(logg),
		).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).
			Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(deps.ProductService, logg))
		r.Get("/{productID}", controllers.ProductsGet(deps.ProductService, logg))
		r.Get("/{productID}/constraints", controllers.ProductsConstraints(deps.ProductService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(
			middleware.OptionalAuth(cfg.JWT, deps.SessionChecker, logg),
			middleware.GuestID(logg),
		)
		r.Get("/", controllers.CartGet(deps.CartService, logg))
		r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
		r.Put("/items", controllers.CartUpdateItem(deps.CartService, logg))
		r.Delete("/items", controllers.CartRemoveItem(deps.CartService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

		r.With(middleware.Idempotency(idemStore, cfg.Checkout.IdempotencyTTL, logg)).
			Post("/api/v1/checkout", controllers.Checkout(deps.CheckoutSvc, logg))

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.OrdersService, logg))
			r.Get("/{orderID}", controllers.OrdersGet(deps.OrdersService, logg))
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, deps.SessionChecker, logg),
			middleware.RequireRole(logg, string(enums.UserRoleAdmin)),
		)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.ProductService, logg))
			r.Post("/", controllers.ProductsCreate(deps.ProductService, logg))
			r.Patch("/{productID}", controllers.ProductsUpdate(deps.ProductService, logg))
			r.Delete("/{productID}", controllers.ProductsDelete(deps.ProductService, logg))
		})
		r.Post("/orders/{orderID}/fulfill", controllers.OrdersFulfill(deps.OrdersService, logg))
	})

	return r
}
