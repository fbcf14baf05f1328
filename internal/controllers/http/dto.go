package http

import (
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

// ProductRequest serves create, full update and partial update. Omitted
// fields are nil.
type ProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *uint64          `json:"category"`
}

func (r ProductRequest) toProduct() *domain.Product {
	p := &domain.Product{}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Category != nil {
		p.CategoryID = *r.Category
	}
	return p
}

type CategoryRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

type OrderItemRequest struct {
	Product  uint64 `json:"product"`
	Quantity int    `json:"quantity"`
}

type CreateOrderRequest struct {
	Name    string             `json:"name"`
	Address string             `json:"address"`
	Phone   string             `json:"phone"`
	Items   []OrderItemRequest `json:"items"`
}

type UpdateOrderRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Status  *string `json:"status"`
}

type OrderItemResponse struct {
	ID          uint64          `json:"id"`
	Product     uint64          `json:"product"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID        uint64              `json:"id"`
	User      string              `json:"user"`
	Name      string              `json:"name"`
	Address   string              `json:"address"`
	Phone     string              `json:"phone"`
	Total     decimal.Decimal     `json:"total"`
	Status    domain.OrderStatus  `json:"status"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		Name:      o.Name,
		Address:   o.Address,
		Phone:     o.Phone,
		Total:     o.Total,
		Status:    o.Status,
		Items:     make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.User != nil {
		resp.User = o.User.Username
	}
	for _, it := range o.Items {
		item := OrderItemResponse{
			ID:       it.ID,
			Product:  it.ProductID,
			Quantity: it.Quantity,
			Price:    it.Price,
			Subtotal: it.Subtotal(),
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

type ListResponse struct {
	Count   int64       `json:"count"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Results interface{} `json:"results"`
}
