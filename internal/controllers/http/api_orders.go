package http

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListOrders(c *gin.Context) {
	page, limit := pagination(c)
	orders, count, err := h.orders.List(c.Request.Context(), middleware.ActorFrom(c), c.Query("status"), page, limit)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	results := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		results = append(results, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, ListResponse{Count: count, Page: page, Limit: limit, Results: results})
}

// CreateOrder always assigns the order to the caller; a user field in the
// body is ignored.
func (h *Handler) CreateOrder(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.Authenticated() {
		writeAPIError(c, domain.ErrAuthRequired)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, domain.Invalid("body", err.Error()))
		return
	}
	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, services.OrderLine{ProductID: it.Product, Quantity: it.Quantity})
	}

	ship := domain.ShippingInfo{Name: req.Name, Address: req.Address, Phone: req.Phone}
	order, err := h.orders.PlaceOrder(c.Request.Context(), actor, ship, lines)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	order, err := h.orders.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// UpdateOrder edits shipping fields for the owner or staff. A status change
// in the same request additionally requires staff.
func (h *Handler) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, domain.Invalid("body", err.Error()))
		return
	}

	patch := services.OrderPatch{Name: req.Name, Address: req.Address, Phone: req.Phone}
	if req.Status != nil {
		st := domain.OrderStatus(*req.Status)
		patch.Status = &st
	}
	order, err := h.orders.Update(c.Request.Context(), middleware.ActorFrom(c), id, patch)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	if err := h.orders.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		writeAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) APIMarkPaid(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		writeAPIError(c, domain.ErrNotFound)
		return
	}
	order, err := h.orders.MarkPaid(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}
