package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	catalog *services.CatalogService
	carts   *services.CartService
	orders  *services.OrderService
	auth    *services.AuthService
	store   sessions.Store
	limiter *middleware.RateLimiter
	db      Pinger
}

func NewHandler(
	catalog *services.CatalogService,
	carts *services.CartService,
	orders *services.OrderService,
	auth *services.AuthService,
	store sessions.Store,
	limiter *middleware.RateLimiter,
	db Pinger,
) *Handler {
	return &Handler{
		catalog: catalog,
		carts:   carts,
		orders:  orders,
		auth:    auth,
		store:   store,
		limiter: limiter,
		db:      db,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api", middleware.BearerAuth(h.auth))
	{
		api.POST("/auth/register", h.limiter.Handler(), h.APIRegister)
		api.POST("/auth/token", h.limiter.Handler(), h.APIToken)

		api.GET("/products", h.ListProducts)
		api.POST("/products", h.CreateProduct)
		api.GET("/products/:id", h.GetProduct)
		api.PUT("/products/:id", h.ReplaceProduct)
		api.PATCH("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)
		api.POST("/products/:id/image", h.UploadProductImage)

		api.GET("/categories", h.ListCategories)
		api.POST("/categories", h.CreateCategory)
		api.GET("/categories/:id", h.GetCategory)
		api.PUT("/categories/:id", h.UpdateCategory)
		api.PATCH("/categories/:id", h.UpdateCategory)
		api.DELETE("/categories/:id", h.DeleteCategory)

		api.GET("/orders", h.ListOrders)
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders/:id", h.GetOrder)
		api.PATCH("/orders/:id", h.UpdateOrder)
		api.DELETE("/orders/:id", h.DeleteOrder)
		api.POST("/orders/:id/mark-paid", h.APIMarkPaid)
	}

	pages := r.Group("/", middleware.Sessions(h.store, h.auth))
	{
		pages.GET("/", h.ProductListPage)
		pages.GET("/product/:id", h.ProductDetailPage)
		pages.POST("/product/:id", h.AddToCart)
		pages.GET("/cart", h.CartPage)
		pages.POST("/cart/update", h.UpdateCart)
		pages.GET("/login", h.LoginPage)
		pages.POST("/login", h.limiter.Handler(), h.Login)
		pages.GET("/logout", h.Logout)
		pages.POST("/logout", h.Logout)
		pages.GET("/register", h.RegisterPage)
		pages.POST("/register", h.limiter.Handler(), h.Register)
		pages.GET("/checkout", h.CheckoutPage)
		pages.POST("/checkout", h.Checkout)
		pages.GET("/orders", h.OrderHistoryPage)
		pages.GET("/orders/:id/mark_paid", h.MarkPaidPage)
		pages.POST("/orders/:id/mark_paid", h.MarkPaid)
	}
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func paramID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// pagination normalizes page and limit the same way the repositories do.
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
