package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Cart maps a product id in string form to a quantity of at least one.
type Cart map[string]int

func CartKey(productID uint64) string {
	return strconv.FormatUint(productID, 10)
}

// ProductIDs returns the numeric ids referenced by the cart. Keys that do not
// parse are skipped.
func (c Cart) ProductIDs() []uint64 {
	ids := make([]uint64, 0, len(c))
	for k := range c {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Count is the number of units across all entries.
func (c Cart) Count() int {
	n := 0
	for _, q := range c {
		n += q
	}
	return n
}

type CartAction string

const (
	CartIncrease CartAction = "increase"
	CartDecrease CartAction = "decrease"
	CartRemove   CartAction = "remove"
)

func ParseCartAction(s string) (CartAction, error) {
	switch a := CartAction(s); a {
	case CartIncrease, CartDecrease, CartRemove:
		return a, nil
	}
	return "", Invalid("action", "must be one of increase, decrease, remove")
}

// Apply mutates c for the given product key. Applying any action to an
// absent key does nothing.
func (c Cart) Apply(key string, action CartAction) {
	qty, ok := c[key]
	if !ok {
		return
	}
	switch action {
	case CartIncrease:
		c[key] = qty + 1
	case CartDecrease:
		if qty-1 <= 0 {
			delete(c, key)
			return
		}
		c[key] = qty - 1
	case CartRemove:
		delete(c, key)
	}
}

type LineItem struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ResolvedCart struct {
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (r ResolvedCart) Empty() bool { return len(r.Items) == 0 }
