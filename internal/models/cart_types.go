package models

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Quantity is a line item count. Persisted carts may carry a corrupted value
// (a string, null, a fraction); those decode leniently instead of failing the
// whole cart: integers and integer strings decode exactly, fractions are
// truncated, and anything else or anything outside the int range becomes 0.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*q = parseQuantity(strings.TrimSpace(s))
		return nil
	}
	*q = parseQuantity(string(data))
	return nil
}

func parseQuantity(s string) Quantity {
	if n, err := strconv.ParseInt(s, 10, 0); err == nil {
		return Quantity(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0
	}
	return Quantity(int(f))
}

// LineItem is one row of the cart: a copy of the product plus the selected
// quantity and the identity key it is merged on.
type LineItem struct {
	Product
	Qty     Quantity `json:"qty"`
	CartKey string   `json:"cartKey"`
}

// LineTotal is price times quantity.
func (l LineItem) LineTotal() float64 {
	return l.Price * float64(l.Qty)
}

// CartLine is a summary row returned to clients.
type CartLine struct {
	CartKey   string  `json:"cartKey"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

// CartSummary holds the money breakdown of a cart.
type CartSummary struct {
	Lines         []CartLine `json:"lines"`
	TotalQuantity int        `json:"totalQuantity"`
	Subtotal      float64    `json:"subtotal"`
	Discount      float64    `json:"discount"`
	Shipping      float64    `json:"shipping"`
	Total         float64    `json:"total"`
}
