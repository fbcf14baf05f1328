package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// maxPrice is the first value that no longer fits decimal(10,2).
var maxPrice = decimal.New(1, 8)

type Product struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"size:200;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;index"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	ImageURL    string          `json:"image" gorm:"size:500"`
	CategoryID  uint64          `json:"category" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (p Product) String() string { return p.Name }

func (p Product) InStock() bool { return p.Stock > 0 }

func (p Product) Validate() error {
	v := NewValidationError()
	switch {
	case p.Name == "":
		v.Add("name", "this field is required")
	case len(p.Name) > 200:
		v.Add("name", "ensure this field has no more than 200 characters")
	}
	validatePrice(v, p.Price)
	if p.Stock < 0 {
		v.Add("stock", "ensure this value is greater than or equal to 0")
	}
	if p.CategoryID == 0 {
		v.Add("category", "this field is required")
	}
	return v.OrNil()
}

func validatePrice(v *ValidationError, price decimal.Decimal) {
	switch {
	case price.IsNegative():
		v.Add("price", "ensure this value is greater than or equal to 0")
	case !price.Equal(price.Round(2)):
		v.Add("price", "ensure that there are no more than 2 decimal places")
	case price.GreaterThanOrEqual(maxPrice):
		v.Add("price", "ensure that there are no more than 10 digits in total")
	}
}

// ProductFilter narrows product listings. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryID   uint64
	CategorySlug string
	Price        *decimal.Decimal
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Stock        *int
	Search       string
	Ordering     string
	Page         int
	Limit        int
}

// ProductOrderings maps the public ordering keys to columns.
var ProductOrderings = map[string]string{
	"price":       "price ASC",
	"-price":      "price DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
	"stock":       "stock ASC",
	"-stock":      "stock DESC",
}
