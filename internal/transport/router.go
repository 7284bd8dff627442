package transport

import (
	"net/http"

	"shopora-be/internal/cart"
	"shopora-be/internal/category"
	"shopora-be/internal/metrics"
	"shopora-be/internal/middleware"
	"shopora-be/internal/order"
	"shopora-be/internal/product"
	"shopora-be/internal/review"
	"shopora-be/internal/user"
	"shopora-be/internal/wishlist"

	"github.com/gin-gonic/gin"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	User     *user.Handler
	Category *category.Handler
	Product  *product.Handler
	Cart     *cart.Handler
	Wishlist *wishlist.Handler
	Review   *review.Handler
	Order    *order.Handler
}

// NewRouter builds the gin engine with the full middleware chain and
// route table.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"metrics": metrics.Snapshot(),
		})
	})

	api := router.Group("/api")

	// Public routes; OptionalAuth lets review listings include the
	// requester's own review when a token is present. The limiter runs
	// after auth so token holders get per-user buckets instead of
	// sharing an IP bucket behind a proxy.
	public := api.Group("")
	public.Use(middleware.OptionalAuth(), middleware.RateLimit())
	{
		public.POST("/auth/register", h.User.Register)
		public.POST("/auth/login", h.User.Login)

		public.GET("/categories", h.Category.List)
		public.GET("/products", h.Product.List)
		public.GET("/products/:slug", h.Product.GetBySlug)
		public.GET("/products/:slug/reviews", h.Review.Index)
	}

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(), middleware.RateLimit())
	{
		authed.GET("/cart", h.Cart.Show)
		authed.POST("/cart/items", h.Cart.AddItem)
		authed.PATCH("/cart/items/:id", h.Cart.UpdateItem)
		authed.DELETE("/cart/items/:id", h.Cart.RemoveItem)

		authed.GET("/wishlist", h.Wishlist.Index)
		authed.POST("/wishlist/toggle", h.Wishlist.Toggle)
		authed.DELETE("/wishlist/items/:productId", h.Wishlist.Destroy)

		authed.POST("/products/:slug/reviews", h.Review.Upsert)
		authed.DELETE("/products/:slug/reviews", h.Review.Destroy)

		authed.POST("/checkout", h.Order.Checkout)
		authed.GET("/orders", h.Order.Index)
		authed.GET("/orders/:id", h.Order.Show)
	}

	admin := api.Group("")
	admin.Use(middleware.RequireAuth(), middleware.RequireAdmin(), middleware.RateLimit())
	{
		admin.PATCH("/orders/:id/status", h.Order.UpdateStatus)
	}

	return router
}
