package services

import (
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

func CreateMockOrder(id, userID uint64, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:        id,
		UserID:    userID,
		Name:      "Ada Lovelace",
		Address:   "12 Analytical Row",
		Phone:     "555-0100",
		Total:     decimal.RequireFromString(TestProductPrice),
		Status:    status,
		CreatedAt: time.Now(),
		Items: []domain.OrderItem{
			{ID: 1, OrderID: id, ProductID: TestProductID, Quantity: 1, Price: decimal.RequireFromString(TestProductPrice)},
		},
	}
}

func CreateMockProduct(id uint64, name, price string, stock int) *domain.Product {
	return &domain.Product{
		ID:         id,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: TestCategoryID,
	}
}

func MockShipping() domain.ShippingInfo {
	return domain.ShippingInfo{Name: "Ada Lovelace", Address: "12 Analytical Row", Phone: "555-0100"}
}

var (
	TestCustomer = domain.Actor{UserID: 10, Username: "ada"}
	TestOther    = domain.Actor{UserID: 11, Username: "grace"}
	TestStaff    = domain.Actor{UserID: 1, Username: "admin", Staff: true}
)

const (
	TestProductID    = uint64(1)
	TestCategoryID   = uint64(3)
	TestOrderID      = uint64(1)
	TestProductName  = "Test Product"
	TestProductPrice = "10.00"
	TestProductStock = 5
	TestSessionID    = "session-1"
)
