package checkout

import "github.com/shopspring/decimal"

// TaxRate is the flat sales tax applied to the post-discount amount.
var TaxRate = decimal.NewFromFloat(0.08)

// ShippingMethod is a flat-rate shipping option.
type ShippingMethod struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Estimate string          `json:"days"`
}

// DefaultShippingMethods mirrors the storefront's shipping table.
func DefaultShippingMethods() []ShippingMethod {
	return []ShippingMethod{
		{ID: "standard", Name: "Standard Shipping", Price: decimal.NewFromFloat(5.99), Estimate: "3-5 business days"},
		{ID: "express", Name: "Express Shipping", Price: decimal.NewFromFloat(12.99), Estimate: "1-2 business days"},
		{ID: "overnight", Name: "Overnight Shipping", Price: decimal.NewFromFloat(24.99), Estimate: "Next business day"},
	}
}

// Promo is a validated percent-off promotion code.
type Promo struct {
	Code       string          `json:"code"`
	PercentOff decimal.Decimal `json:"discount"`
}

// Totals is the checkout money breakdown, accumulated in full precision.
// Rounding to 2 decimals happens only at presentation time.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// CalculateTotals derives the breakdown from a subtotal, a shipping method
// and an optional promo. The discount is clamped to the subtotal so the tax
// base can never go negative; tax applies to the post-discount,
// pre-shipping amount.
func CalculateTotals(subtotal decimal.Decimal, method ShippingMethod, promo *Promo) Totals {
	discount := decimal.Zero
	if promo != nil {
		discount = subtotal.Mul(promo.PercentOff).Div(oneHundred)
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
	}

	tax := subtotal.Sub(discount).Mul(TaxRate)
	total := subtotal.Add(method.Price).Sub(discount).Add(tax)

	return Totals{
		Subtotal: subtotal,
		Shipping: method.Price,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}
}
