package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kai120789/marketplace/api/controllers"
	"github.com/Kai120789/marketplace/api/middleware"
	"github.com/Kai120789/marketplace/internal/address"
	"github.com/Kai120789/marketplace/internal/auth"
	"github.com/Kai120789/marketplace/internal/cart"
	"github.com/Kai120789/marketplace/internal/catalog"
	"github.com/Kai120789/marketplace/internal/export"
	"github.com/Kai120789/marketplace/internal/orders"
	product "github.com/Kai120789/marketplace/internal/products"
	"github.com/Kai120789/marketplace/internal/reviews"
	"github.com/Kai120789/marketplace/internal/users"
	"github.com/Kai120789/marketplace/pkg/auth/session"
	"github.com/Kai120789/marketplace/pkg/config"
	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/enums"
	"github.com/Kai120789/marketplace/pkg/logger"
	"github.com/Kai120789/marketplace/pkg/metrics"
	pkgredis "github.com/Kai120789/marketplace/pkg/redis"
)

// Infra carries the shared clients the HTTP layer talks to directly. Nil
// fields disable the feature they back (readiness checks, idempotency,
// rate limiting, the /metrics endpoint).
type Infra struct {
	DB          db.Pinger
	Redis       pkgredis.Pinger
	Idempotency pkgredis.IdempotencyStore
	RateLimiter middleware.RateLimiter
	Sessions    session.AccessSessionChecker
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

// Services bundles the domain services mounted under /api/v1.
type Services struct {
	Auth      auth.Service
	Profiles  users.ProfileService
	Addresses address.Service
	Catalog   catalog.Service
	Products  product.Service
	Reviews   reviews.Service
	Cart      cart.Service
	Orders    orders.Service
	Export    export.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(infra.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)

	// Idempotency keys are matched on the full route pattern, so the
	// middleware is attached per route rather than per group.
	idem := middleware.Idempotency(infra.Idempotency, logg)
	authn := middleware.Auth(cfg.JWT, infra.Sessions, logg)
	catalogWriters := middleware.RequireRole(logg, enums.UserRoleSeller, enums.UserRoleAdmin)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, infra.DB, infra.Redis))
	})

	if infra.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, infra.RateLimiter, logg), idem).Post("/register", controllers.AuthRegister(svc.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, infra.RateLimiter, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(svc.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(svc.Auth, logg))
		})

		// Public catalog reads.
		r.Get("/index", controllers.ProductIndex(svc.Products, logg))
		r.Get("/categories", controllers.CategoryList(svc.Catalog, logg))
		r.Get("/categories/{slug}", controllers.CategoryDetail(svc.Catalog, svc.Products, logg))
		r.Get("/brands", controllers.BrandList(svc.Catalog, logg))
		r.Get("/brands/{brandId}", controllers.BrandDetail(svc.Catalog, logg))
		r.Get("/colors", controllers.ColorList(svc.Catalog, logg))
		r.Get("/products", controllers.ProductList(svc.Products, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(svc.Products, logg))
		r.Get("/products/{slug}/reviews", controllers.ReviewList(svc.Reviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Get("/ping", controllers.PrivatePing())

			r.Route("/me", func(r chi.Router) {
				r.Get("/profile", controllers.ProfileFetch(svc.Profiles, logg))
				r.Patch("/profile", controllers.ProfileUpdate(svc.Profiles, logg))
				r.Get("/addresses", controllers.AddressList(svc.Addresses, logg))
				r.Post("/addresses", controllers.AddressCreate(svc.Addresses, logg))
				r.Delete("/addresses/{addressId}", controllers.AddressDelete(svc.Addresses, logg))
			})

			r.With(idem).Post("/products/{slug}/reviews", controllers.ReviewCreate(svc.Reviews, logg))
			r.Delete("/reviews/{reviewId}", controllers.ReviewDelete(svc.Reviews, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svc.Cart, logg))
				r.With(idem).Post("/items", controllers.CartAddItem(svc.Cart, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(svc.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(svc.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(idem).Post("/", controllers.OrderPlace(svc.Orders, logg))
				r.Get("/", controllers.OrderList(svc.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(svc.Orders, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(catalogWriters)
				r.Post("/categories", controllers.CategoryCreate(svc.Catalog, logg))
				r.Post("/brands", controllers.BrandCreate(svc.Catalog, logg))
				r.Post("/colors", controllers.ColorCreate(svc.Catalog, logg))
				r.Post("/products", controllers.ProductCreate(svc.Products, logg))
				r.Delete("/products/{productId}", controllers.ProductDelete(svc.Products, logg))
				r.Post("/products/{productId}/variants", controllers.VariantCreate(svc.Products, logg))
				r.Delete("/products/{productId}/variants/{variantId}", controllers.VariantDelete(svc.Products, logg))
				r.Put("/products/{productId}/colors/{colorId}", controllers.ProductColorAttach(svc.Products, logg))
				r.Delete("/products/{productId}/colors/{colorId}", controllers.ProductColorDetach(svc.Products, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.With(catalogWriters, idem).Patch("/orders/{orderId}/fulfillment", controllers.AdminOrderFulfillment(svc.Orders, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
					r.Get("/ping", controllers.AdminPing())
					r.Patch("/users/{userId}/role", controllers.AdminChangeRole(svc.Profiles, logg))
					r.Get("/export/products.xlsx", controllers.AdminExportProducts(svc.Export, logg))
					r.Get("/export/orders.xlsx", controllers.AdminExportOrders(svc.Export, logg))
				})
			})
		})
	})

	return r
}
