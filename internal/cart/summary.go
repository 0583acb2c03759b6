package cart

import (
	"github.com/01moynul/taptosell-storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Pricing holds the fixed cart rules.
type Pricing struct {
	// DiscountThreshold is the subtotal that must be exceeded for the
	// discount to apply.
	DiscountThreshold float64
	DiscountPercent   float64
	// ShippingFee is charged on any non-empty subtotal.
	ShippingFee float64
}

// DefaultPricing: 10% off above 3000, flat 30 shipping.
var DefaultPricing = Pricing{DiscountThreshold: 3000, DiscountPercent: 10, ShippingFee: 30}

// Summarize prices items. Amounts are rounded to cents.
func (p Pricing) Summarize(items []models.LineItem) models.CartSummary {
	summary := models.CartSummary{Lines: make([]models.CartLine, 0, len(items))}

	subtotal := decimal.Zero
	for _, it := range items {
		qty := max(int(it.Qty), 0)
		price := decimal.NewFromFloat(it.Price)
		lineTotal := price.Mul(decimal.NewFromInt(int64(qty)))
		subtotal = subtotal.Add(lineTotal)
		summary.TotalQuantity += qty
		summary.Lines = append(summary.Lines, models.CartLine{
			CartKey:   it.CartKey,
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  qty,
			LineTotal: lineTotal.Round(2).InexactFloat64(),
		})
	}

	discount := decimal.Zero
	if subtotal.GreaterThan(decimal.NewFromFloat(p.DiscountThreshold)) {
		discount = subtotal.Mul(decimal.NewFromFloat(p.DiscountPercent)).Div(decimal.NewFromInt(100)).Round(2)
	}
	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = decimal.NewFromFloat(p.ShippingFee)
	}
	total := subtotal.Sub(discount).Add(shipping)

	summary.Subtotal = subtotal.Round(2).InexactFloat64()
	summary.Discount = discount.InexactFloat64()
	summary.Shipping = shipping.Round(2).InexactFloat64()
	summary.Total = total.Round(2).InexactFloat64()
	return summary
}
