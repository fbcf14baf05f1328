package http

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseProductFilter(c *gin.Context) (domain.ProductFilter, error) {
	v := domain.NewValidationError()
	f := domain.ProductFilter{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}
	f.Page, f.Limit = pagination(c)

	if raw := c.Query("category"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			f.CategoryID = id
		} else {
			f.CategorySlug = raw
		}
	}
	for key, dst := range map[string]**decimal.Decimal{
		"price":     &f.Price,
		"min_price": &f.MinPrice,
		"max_price": &f.MaxPrice,
	} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			v.Add(key, "enter a number")
			continue
		}
		*dst = &d
	}
	if raw := c.Query("stock"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("stock", "enter a whole number")
		} else {
			f.Stock = &n
		}
	}
	return f, v.OrNil()
}

func (h *Handler) ListProducts(c *gin.Context) {
	f, err := parseProductFilter(c)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	products, count, err := h.catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Count: count, Page: f.Page, Limit: f.Limit, Results: products})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, domain.Invalid("body", err.Error()))
		return
	}
	p := req.toProduct()
	if err := h.catalog.CreateProduct(c.Request.Context(), middleware.ActorFrom(c), p); err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ReplaceProduct treats omitted fields as their zero value.
func (h *Handler) ReplaceProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, domain.Invalid("body", err.Error()))
		return
	}
	full := req.toProduct()
	h.updateProduct(c, services.ProductPatch{
		Name:        &full.Name,
		Description: &full.Description,
		Price:       &full.Price,
		Stock:       &full.Stock,
		CategoryID:  &full.CategoryID,
	})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, domain.Invalid("body", err.Error()))
		return
	}
	h.updateProduct(c, services.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.Category,
	})
}

func (h *Handler) updateProduct(c *gin.Context, patch services.ProductPatch) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), middleware.ActorFrom(c), id, patch)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		writeAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UploadProductImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	actor := middleware.ActorFrom(c)
	if !actor.Authenticated() {
		writeAPIError(c, domain.ErrAuthRequired)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		writeAPIError(c, domain.Invalid("image", "no file was submitted"))
		return
	}
	f, err := file.Open()
	if err != nil {
		writeAPIError(c, err)
		return
	}
	defer f.Close()

	p, err := h.catalog.SetProductImage(c.Request.Context(), actor, id, file.Filename, file.Header.Get("Content-Type"), f)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Count: int64(len(categories)), Page: 1, Limit: len(categories), Results: categories})
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	cat, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, domain.Invalid("body", err.Error()))
		return
	}
	cat := &domain.Category{}
	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Slug != nil {
		cat.Slug = *req.Slug
	}
	if err := h.catalog.CreateCategory(c.Request.Context(), middleware.ActorFrom(c), cat); err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, domain.Invalid("body", err.Error()))
		return
	}
	cat, err := h.catalog.UpdateCategory(c.Request.Context(), middleware.ActorFrom(c), id, services.CategoryPatch{Name: req.Name, Slug: req.Slug})
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		writeAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
