// Package routes mounts the sandbox API on a router.
package routes

import (
	"time"

	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/controllers"
	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/cache"
	"github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/middleware"
	"github.com/sparkcrackers/storefront/pkg/rbac"
	"github.com/sparkcrackers/storefront/pkg/router"
	"github.com/sparkcrackers/storefront/pkg/ws"
)

// Deps is what the API handlers need from the process.
type Deps struct {
	DB            *gorm.DB
	Cache         *cache.Store
	CatalogTTL    time.Duration
	Hub           *ws.Hub
	PaymentSecret string
	// AuthAttempts caps login/register calls per client IP per minute.
	AuthAttempts int
}

func RegisterAPI(r *router.Router, d Deps) {
	if d.AuthAttempts <= 0 {
		d.AuthAttempts = 20
	}

	users := repositories.NewUserRepository(d.DB)
	products := repositories.NewProductRepository(d.DB, d.Cache, d.CatalogTTL)
	carts := repositories.NewCartRepository(d.DB, products)
	wishlists := repositories.NewWishlistRepository(d.DB, products)
	orders := repositories.NewOrderRepository(d.DB)

	authC := controllers.NewAuthController(users)
	userC := controllers.NewUserController(users)
	productC := controllers.NewProductController(products)
	cartC := controllers.NewCartController(carts, products)
	wishlistC := controllers.NewWishlistController(wishlists, products)
	contentC := controllers.NewContentController(repositories.NewContentRepository(d.DB))
	orderC := controllers.NewOrderController(orders, products, d.Hub)
	paymentC := controllers.NewPaymentController(repositories.NewPaymentRepository(d.DB), orders, products, d.Hub, d.PaymentSecret)

	api := r.Group("/api")

	throttle := middleware.NewRateLimiter(d.AuthAttempts, time.Minute).Middleware
	api.Post("/auth/login", "auth.login", ctx.Wrap(authC.Login), throttle)
	api.Post("/auth/register", "auth.register", ctx.Wrap(authC.Register), throttle)

	api.Get("/products", "products.index", ctx.Wrap(productC.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(productC.Show))
	api.Get("/content", "content.index", ctx.Wrap(contentC.Index))

	secured := api.Group("/", middleware.Auth)
	secured.Get("/users/profile", "users.profile", ctx.Wrap(userC.Profile))
	secured.Put("/users/profile", "users.update", ctx.Wrap(userC.UpdateProfile))

	secured.Get("/cart", "cart.index", ctx.Wrap(cartC.Index))
	secured.Post("/cart", "cart.store", ctx.Wrap(cartC.Store))
	secured.Delete("/cart", "cart.clear", ctx.Wrap(cartC.Clear))
	secured.Put("/cart/{productId}", "cart.update", ctx.Wrap(cartC.Update))
	secured.Delete("/cart/{productId}", "cart.destroy", ctx.Wrap(cartC.Destroy))

	secured.Get("/wishlist", "wishlist.index", ctx.Wrap(wishlistC.Index))
	secured.Post("/wishlist/{productId}", "wishlist.store", ctx.Wrap(wishlistC.Store))
	secured.Delete("/wishlist/{productId}", "wishlist.destroy", ctx.Wrap(wishlistC.Destroy))

	secured.Post("/payments/create-order", "payments.create_order", ctx.Wrap(paymentC.CreateOrder))
	secured.Post("/payments/verify", "payments.verify", ctx.Wrap(paymentC.Verify))

	secured.Get("/orders", "orders.index", ctx.Wrap(orderC.Index))
	secured.Post("/orders", "orders.store", ctx.Wrap(orderC.Store))
	secured.Get("/orders/{id}", "orders.show", ctx.Wrap(orderC.Show))
	secured.Put("/orders/{id}/cancel", "orders.cancel", ctx.Wrap(orderC.Cancel))
	secured.Get("/orders/{id}/live", "orders.live", ctx.Wrap(orderC.Live))

	admin := secured.Group("/", rbac.HasRole(models.RoleAdmin))
	admin.Put("/content", "content.update", ctx.Wrap(contentC.Update))
	admin.Put("/orders/{id}/status", "orders.status", ctx.Wrap(orderC.UpdateStatus))
}
