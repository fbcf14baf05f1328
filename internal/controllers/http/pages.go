package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the page templates. Every page shares the layout blocks.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	}).ParseFS(templateFS, "templates/*.html"))
}

func render(c *gin.Context, status int, name string, data gin.H) {
	data["actor"] = middleware.ActorFrom(c)
	c.HTML(status, name, data)
}

func validationFields(err error) (map[string]string, bool) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

func (h *Handler) ProductListPage(c *gin.Context) {
	ctx := c.Request.Context()
	f := domain.ProductFilter{Page: 1, Limit: 100}

	var category *domain.Category
	if slug := c.Query("category"); slug != "" {
		cat, err := h.catalog.GetCategoryBySlug(ctx, slug)
		if err != nil {
			renderPageError(c, err)
			return
		}
		if cat == nil {
			renderPageError(c, domain.ErrNotFound)
			return
		}
		category = cat
		f.CategoryID = cat.ID
	}

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		renderPageError(c, err)
		return
	}
	products, _, err := h.catalog.ListProducts(ctx, f)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "product_list.html", gin.H{
		"category":   category,
		"categories": categories,
		"products":   products,
	})
}

func (h *Handler) ProductDetailPage(c *gin.Context) {
	h.renderProductDetail(c, http.StatusOK, nil)
}

func (h *Handler) renderProductDetail(c *gin.Context, status int, fields map[string]string) {
	id, ok := paramID(c)
	if !ok {
		renderPageError(c, domain.ErrNotFound)
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, status, "product_detail.html", gin.H{"product": p, "errors": fields})
}

// AddToCart reads an optional quantity, defaulting to one.
func (h *Handler) AddToCart(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderPageError(c, domain.ErrNotFound)
		return
	}
	qty := 1
	if raw := c.PostForm("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.renderProductDetail(c, http.StatusBadRequest, map[string]string{"quantity": "enter a whole number"})
			return
		}
		qty = n
	}

	err := h.carts.Add(c.Request.Context(), middleware.SessionID(c), id, qty)
	if fields, ok := validationFields(err); ok {
		h.renderProductDetail(c, http.StatusBadRequest, fields)
		return
	}
	if err != nil {
		renderPageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/cart")
}

func (h *Handler) CartPage(c *gin.Context) {
	resolved, err := h.carts.Resolve(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "cart.html", gin.H{"cart": resolved})
}

func (h *Handler) UpdateCart(c *gin.Context) {
	err := h.carts.Adjust(c.Request.Context(), middleware.SessionID(c), c.PostForm("product_id"), c.PostForm("action"))
	if err != nil {
		renderPageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/cart")
}

func (h *Handler) LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"next": c.Query("next")})
}

func (h *Handler) Login(c *gin.Context) {
	var req CredentialsRequest
	_ = c.ShouldBind(&req)
	next := c.PostForm("next")

	u, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		render(c, http.StatusOK, "login.html", gin.H{
			"next":     next,
			"username": req.Username,
			"error":    "Please enter a correct username and password.",
		})
		return
	}
	if err != nil {
		renderPageError(c, err)
		return
	}
	if err := h.login(c, u); err != nil {
		renderPageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

// login rotates the session id and carries the cart over to it.
func (h *Handler) login(c *gin.Context, u *domain.User) error {
	prev, err := middleware.Login(c, u)
	if err != nil {
		return err
	}
	if err := h.carts.Move(c.Request.Context(), prev, middleware.SessionID(c)); err != nil {
		log.WithField("user_id", u.ID).Errorf("carry cart over login: %v", err)
	}
	return nil
}

func (h *Handler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		log.Errorf("logout: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{})
}

// Register logs the new user in right away.
func (h *Handler) Register(c *gin.Context) {
	var req CredentialsRequest
	_ = c.ShouldBind(&req)

	u, err := h.auth.Register(c.Request.Context(), req.Username, req.Password, false)
	if fields, ok := validationFields(err); ok {
		render(c, http.StatusOK, "register.html", gin.H{"username": req.Username, "errors": fields})
		return
	}
	if errors.Is(err, domain.ErrConflict) {
		render(c, http.StatusOK, "register.html", gin.H{
			"username": req.Username,
			"errors":   map[string]string{"username": "A user with that username already exists."},
		})
		return
	}
	if err != nil {
		renderPageError(c, err)
		return
	}
	if err := h.login(c, u); err != nil {
		renderPageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) CheckoutPage(c *gin.Context) {
	if !middleware.ActorFrom(c).Authenticated() {
		redirectToLogin(c)
		return
	}
	h.renderCheckout(c, http.StatusOK, domain.ShippingInfo{}, nil, "")
}

func (h *Handler) renderCheckout(c *gin.Context, status int, ship domain.ShippingInfo, fields map[string]string, message string) {
	resolved, err := h.carts.Resolve(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, status, "checkout.html", gin.H{
		"cart":     resolved,
		"shipping": ship,
		"errors":   fields,
		"message":  message,
	})
}

func (h *Handler) Checkout(c *gin.Context) {
	ship := domain.ShippingInfo{
		Name:    c.PostForm("name"),
		Address: c.PostForm("address"),
		Phone:   c.PostForm("phone"),
	}
	order, err := h.orders.Checkout(c.Request.Context(), middleware.ActorFrom(c), middleware.SessionID(c), ship)
	if fields, ok := validationFields(err); ok {
		h.renderCheckout(c, http.StatusOK, ship, fields, "")
		return
	}
	if errors.Is(err, domain.ErrEmptyCart) {
		h.renderCheckout(c, http.StatusConflict, ship, nil, "Your cart is empty.")
		return
	}
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "order_success.html", gin.H{"order": order})
}

func (h *Handler) OrderHistoryPage(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page <= 0 {
		page = 1
	}
	orders, count, err := h.orders.List(c.Request.Context(), middleware.ActorFrom(c), "", page, 50)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "order_history.html", gin.H{"orders": orders, "count": count, "page": page})
}

func (h *Handler) MarkPaidPage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderPageError(c, domain.ErrNotFound)
		return
	}
	order, err := h.orders.PrepareMarkPaid(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "mark_paid.html", gin.H{"order": order})
}

func (h *Handler) MarkPaid(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderPageError(c, domain.ErrNotFound)
		return
	}
	if _, err := h.orders.MarkPaid(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		renderPageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/orders")
}
