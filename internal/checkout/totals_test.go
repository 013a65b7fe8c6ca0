package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func standard(t *testing.T) ShippingMethod {
	t.Helper()
	for _, m := range DefaultShippingMethods() {
		if m.ID == "standard" {
			return m
		}
	}
	t.Fatal("standard shipping method missing")
	return ShippingMethod{}
}

func TestCalculateTotals_PromoScenario(t *testing.T) {
	// subtotal 210, flat 5.99 shipping, 10% promo, 8% tax
	promo := &Promo{Code: "SAVE10", PercentOff: dec("10")}
	totals := CalculateTotals(dec("210"), standard(t), promo)

	assert.True(t, totals.Discount.Equal(dec("21")), "discount %s", totals.Discount)
	assert.True(t, totals.Tax.Equal(dec("15.12")), "tax %s", totals.Tax)
	assert.True(t, totals.Total.Equal(dec("210.11")), "total %s", totals.Total)
}

func TestCalculateTotals_NoPromo(t *testing.T) {
	totals := CalculateTotals(dec("100"), standard(t), nil)

	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Tax.Equal(dec("8")))
	assert.True(t, totals.Total.Equal(dec("113.99")), "total %s", totals.Total)
}

func TestCalculateTotals_DiscountClampedToSubtotal(t *testing.T) {
	promo := &Promo{Code: "MEGA", PercentOff: dec("150")}
	totals := CalculateTotals(dec("40"), standard(t), promo)

	assert.True(t, totals.Discount.Equal(dec("40")), "discount %s", totals.Discount)
	assert.True(t, totals.Tax.IsZero(), "tax %s", totals.Tax)
	// only shipping remains
	assert.True(t, totals.Total.Equal(dec("5.99")), "total %s", totals.Total)
}

func TestCalculateTotals_TaxExcludesShipping(t *testing.T) {
	totals := CalculateTotals(dec("100"), standard(t), nil)

	// 8 = 100 * 0.08; shipping never enters the tax base
	assert.True(t, totals.Tax.Equal(dec("100").Mul(TaxRate)))
}

func TestCalculateTotals_EmptyCart(t *testing.T) {
	totals := CalculateTotals(decimal.Zero, standard(t), nil)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.Equal(dec("5.99")))
}

func TestDefaultShippingMethods_Table(t *testing.T) {
	methods := DefaultShippingMethods()
	require.Len(t, methods, 3)

	prices := map[string]string{
		"standard":  "5.99",
		"express":   "12.99",
		"overnight": "24.99",
	}
	for _, m := range methods {
		want, ok := prices[m.ID]
		require.True(t, ok, "unexpected method %q", m.ID)
		assert.True(t, m.Price.Equal(dec(want)), "%s price %s", m.ID, m.Price)
	}
}
