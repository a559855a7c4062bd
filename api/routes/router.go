package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ortizlabs/storefront-backend/api/controllers"
	"github.com/ortizlabs/storefront-backend/api/middleware"
	"github.com/ortizlabs/storefront-backend/internal/auth"
	"github.com/ortizlabs/storefront-backend/internal/authz"
	"github.com/ortizlabs/storefront-backend/internal/cart"
	"github.com/ortizlabs/storefront-backend/internal/catalog"
	"github.com/ortizlabs/storefront-backend/internal/contact"
	"github.com/ortizlabs/storefront-backend/internal/orders"
	"github.com/ortizlabs/storefront-backend/internal/reports"
	"github.com/ortizlabs/storefront-backend/internal/reviews"
	"github.com/ortizlabs/storefront-backend/internal/users"
	"github.com/ortizlabs/storefront-backend/internal/wishlist"
	"github.com/ortizlabs/storefront-backend/pkg/auth/session"
	"github.com/ortizlabs/storefront-backend/pkg/config"
	"github.com/ortizlabs/storefront-backend/pkg/db"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
	"github.com/ortizlabs/storefront-backend/pkg/metrics"
	pkgredis "github.com/ortizlabs/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *db.Client
	Redis       *pkgredis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry

	Auth     auth.Service
	Users    users.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Wishlist wishlist.Service
	Orders   orders.Service
	Reviews  reviews.Service
	Reports  reports.Service
	Contact  contact.Service
}

// NewRouter assembles the full HTTP surface.
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

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
	})

	// Public storefront surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/products/{productId}", controllers.GetProduct(deps.Catalog, logg))
		r.Get("/products/{productId}/reviews", controllers.ListProductReviews(deps.Reviews, logg))
		r.Get("/categories", controllers.ListCategories(deps.Catalog, logg))
		r.With(middleware.Idempotency(deps.Redis, logg)).Post("/contact", controllers.SubmitContact(deps.Contact, logg))

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Route("/me", func(r chi.Router) {
				r.Use(middleware.Authorize(authz.OpProfileView, logg))
				r.Get("/", controllers.Profile(deps.Users, logg))
				r.Put("/", controllers.UpdateProfile(deps.Users, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Use(middleware.Authorize(authz.OpCartManage, logg))
				r.Get("/", controllers.GetCart(deps.Cart, logg))
				r.Delete("/", controllers.ClearCart(deps.Cart, logg))
				r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
				r.Put("/items/{itemId}", controllers.UpdateCartItem(deps.Cart, logg))
				r.Delete("/items/{itemId}", controllers.RemoveCartItem(deps.Cart, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Use(middleware.Authorize(authz.OpWishlistManage, logg))
				r.Get("/", controllers.ListWishlist(deps.Wishlist, logg))
				r.Post("/items", controllers.AddWishlistItem(deps.Wishlist, logg))
				r.Delete("/items/{productId}", controllers.RemoveWishlistItem(deps.Wishlist, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Use(middleware.Authorize(authz.OpCheckout, logg))
				r.Post("/", controllers.Checkout(deps.Orders, logg))
				r.Post("/buy-now", controllers.BuyNow(deps.Orders, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(middleware.Authorize(authz.OpOrderViewOwn, logg)).Get("/", controllers.ListOwnOrders(deps.Orders, logg))
				r.With(middleware.Authorize(authz.OpOrderViewOwn, logg)).Get("/{orderId}", controllers.GetOwnOrder(deps.Orders, logg))
				r.With(middleware.Authorize(authz.OpOrderViewOwn, logg)).Get("/{orderId}/payment", controllers.GetOwnOrderPayment(deps.Orders, logg))
				r.With(middleware.Authorize(authz.OpOrderCancelOwn, logg)).Post("/{orderId}/cancel", controllers.CancelOwnOrder(deps.Orders, logg))
			})

			r.With(middleware.Authorize(authz.OpReviewCreate, logg)).Post("/products/{productId}/reviews", controllers.CreateReview(deps.Reviews, logg))
			r.With(middleware.Authorize(authz.OpReviewCreate, logg)).Delete("/reviews/{reviewId}", controllers.DeleteReview(deps.Reviews, logg))

			r.Route("/delivery/orders", func(r chi.Router) {
				r.With(middleware.Authorize(authz.OpDeliveryListOwn, logg)).Get("/", controllers.ListAssignedOrders(deps.Orders, logg))
				r.With(middleware.Authorize(authz.OpDeliveryUpdateOwn, logg)).Post("/{orderId}/status", controllers.UpdateDeliveryStatus(deps.Orders, logg))
				r.With(middleware.Authorize(authz.OpDeliveryListOwn, logg)).Get("/{orderId}/history", controllers.CourierDeliveryHistory(deps.Orders, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Route("/orders", func(r chi.Router) {
					r.With(middleware.Authorize(authz.OpOrderListAll, logg)).Get("/", controllers.AdminListOrders(deps.Orders, logg))
					r.With(middleware.Authorize(authz.OpOrderListAll, logg)).Get("/{orderId}", controllers.AdminGetOrder(deps.Orders, logg))
					r.With(middleware.Authorize(authz.OpOrderListAll, logg)).Get("/{orderId}/payment", controllers.AdminGetOrderPayment(deps.Orders, logg))
					r.With(middleware.Authorize(authz.OpOrderListAll, logg)).Get("/{orderId}/history", controllers.DeliveryHistory(deps.Orders, logg))
					r.With(middleware.Authorize(authz.OpOrderSetStatus, logg)).Post("/{orderId}/status", controllers.AdminSetOrderStatus(deps.Orders, logg))
					r.With(middleware.Authorize(authz.OpDeliveryAssign, logg)).Post("/{orderId}/assign", controllers.AdminAssignDelivery(deps.Orders, logg))
					r.With(middleware.Authorize(authz.OpOrderDelete, logg)).Delete("/{orderId}", controllers.AdminDeleteOrder(deps.Orders, logg))
				})

				r.Route("/products", func(r chi.Router) {
					r.Use(middleware.Authorize(authz.OpCatalogManage, logg))
					r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
					r.Put("/{productId}", controllers.AdminUpdateProduct(deps.Catalog, logg))
					r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.Catalog, logg))
				})

				r.Route("/categories", func(r chi.Router) {
					r.Use(middleware.Authorize(authz.OpCatalogManage, logg))
					r.Post("/", controllers.AdminCreateCategory(deps.Catalog, logg))
					r.Put("/{categoryId}", controllers.AdminUpdateCategory(deps.Catalog, logg))
					r.Delete("/{categoryId}", controllers.AdminDeleteCategory(deps.Catalog, logg))
				})

				r.Route("/users", func(r chi.Router) {
					r.Use(middleware.Authorize(authz.OpUsersManage, logg))
					r.Get("/", controllers.AdminListUsers(deps.Users, logg))
					r.Get("/{userId}", controllers.AdminGetUser(deps.Users, logg))
					r.Put("/{userId}/active", controllers.AdminSetUserActive(deps.Users, logg))
					r.Put("/{userId}/role", controllers.AdminSetUserRole(deps.Users, logg))
				})

				r.Route("/reports", func(r chi.Router) {
					r.Use(middleware.Authorize(authz.OpReportsView, logg))
					r.Get("/sales", controllers.SalesReport(deps.Reports, logg))
					r.Get("/dashboard", controllers.Dashboard(deps.Reports, logg))
					r.Post("/snapshots", controllers.CreateReportSnapshot(deps.Reports, logg))
					r.Get("/snapshots", controllers.ListReportSnapshots(deps.Reports, logg))
				})

				r.With(middleware.Authorize(authz.OpContactInboxView, logg)).Get("/contact", controllers.AdminContactInbox(deps.Contact, logg))
			})
		})
	})

	return r
}
