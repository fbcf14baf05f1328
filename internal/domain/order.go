package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPlaced    OrderStatus = "placed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
)

var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusPlaced:    1,
	StatusShipped:   2,
	StatusDelivered: 3,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether next lies strictly after s in the
// pending -> placed -> shipped -> delivered sequence.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

type Order struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64          `json:"-" gorm:"not null;index"`
	User      *User           `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Name      string          `json:"name" gorm:"size:200;not null"`
	Address   string          `json:"address" gorm:"type:text;not null"`
	Phone     string          `json:"phone" gorm:"size:20;not null"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Status    OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Items     []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (o Order) String() string {
	username := ""
	if o.User != nil {
		username = o.User.Username
	}
	return fmt.Sprintf("Order #%d by %s", o.ID, username)
}

// ItemsTotal sums price x quantity over the order's items.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// OrderItem keeps the unit price paid; it is never recomputed from the product.
type OrderItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"-" gorm:"not null;index"`
	ProductID uint64          `json:"product_id" gorm:"not null;index"`
	Product   *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i OrderItem) String() string {
	name := ""
	if i.Product != nil {
		name = i.Product.Name
	}
	return fmt.Sprintf("%s x %d", name, i.Quantity)
}

type ShippingInfo struct {
	Name    string
	Address string
	Phone   string
}

func (s ShippingInfo) Validate() error {
	v := NewValidationError()
	switch {
	case s.Name == "":
		v.Add("name", "this field is required")
	case len(s.Name) > 200:
		v.Add("name", "ensure this field has no more than 200 characters")
	}
	if s.Address == "" {
		v.Add("address", "this field is required")
	}
	switch {
	case s.Phone == "":
		v.Add("phone", "this field is required")
	case len(s.Phone) > 20:
		v.Add("phone", "ensure this field has no more than 20 characters")
	}
	return v.OrNil()
}
