package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant distinguishes otherwise-identical products (size, color).
// The zero value means "no variant selected".
type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

func (v Variant) IsZero() bool {
	return v.Size == "" && v.Color == ""
}

// CartEntry is one line in the cart. Name, image, category and prices are
// copied from the catalog at insertion time; the cart never re-reads the
// catalog, so later catalog changes do not touch existing lines.
type CartEntry struct {
	ProductID     string           `json:"product_id"`
	Name          string           `json:"name"`
	ImageURL      string           `json:"image_url,omitempty"`
	Category      string           `json:"category,omitempty"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	Quantity      int              `json:"quantity"`
	Variant       Variant          `json:"variant,omitzero"`
	AddedAt       time.Time        `json:"added_at"`
}

// EffectiveUnitPrice resolves the discount rule: the discount price is used
// only when 0 <= discount < unit price, otherwise the full unit price applies.
func (e CartEntry) EffectiveUnitPrice() decimal.Decimal {
	if e.DiscountPrice != nil &&
		!e.DiscountPrice.IsNegative() &&
		e.DiscountPrice.LessThan(e.UnitPrice) {
		return *e.DiscountPrice
	}
	return e.UnitPrice
}

// LineTotal is the effective unit price times the quantity.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Matches reports whether the entry belongs to the (productID, variant) key.
// Two entries with the same product but different variants are independent lines.
func (e CartEntry) Matches(productID string, variant Variant) bool {
	return e.ProductID == productID && e.Variant == variant
}

// Cart is the aggregate: an ordered sequence of entries with at most one
// entry per (productID, variant) pair. Insertion order is preserved for display.
type Cart struct {
	Entries []CartEntry `json:"entries"`
}

func (c *Cart) find(productID string, variant Variant) int {
	for i := range c.Entries {
		if c.Entries[i].Matches(productID, variant) {
			return i
		}
	}
	return -1
}

// Merge adds the entry to the cart. An existing line with the same
// (productID, variant) key has its quantity incremented and keeps its
// original snapshot fields and AddedAt; otherwise the entry is appended.
func (c *Cart) Merge(entry CartEntry) {
	if i := c.find(entry.ProductID, entry.Variant); i >= 0 {
		c.Entries[i].Quantity += entry.Quantity
		return
	}
	c.Entries = append(c.Entries, entry)
}

// Remove deletes the matching line. Removing an absent line is harmless;
// the return value reports whether anything was deleted.
func (c *Cart) Remove(productID string, variant Variant) bool {
	i := c.find(productID, variant)
	if i < 0 {
		return false
	}
	c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
	return true
}

// SetQuantity replaces the quantity of an existing line. It reports false
// when no line matches; callers decide whether that is an error.
// Quantities <= 0 must go through Remove instead, a zero-quantity line
// never exists in the collection.
func (c *Cart) SetQuantity(productID string, variant Variant, quantity int) bool {
	i := c.find(productID, variant)
	if i < 0 {
		return false
	}
	c.Entries[i].Quantity = quantity
	return true
}

// Clear empties the cart. The aggregate itself survives, holding zero lines.
func (c *Cart) Clear() {
	c.Entries = nil
}

// Subtotal is the sum of line totals, accumulated in full precision.
// Recomputed on every call, never cached.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Entries {
		total = total.Add(e.LineTotal())
	}
	return total
}

// ItemCount is the total number of units across lines (not the line count).
func (c *Cart) ItemCount() int {
	count := 0
	for _, e := range c.Entries {
		count += e.Quantity
	}
	return count
}

// Contains reports whether a (productID, variant) line exists.
func (c *Cart) Contains(productID string, variant Variant) bool {
	return c.find(productID, variant) >= 0
}

// Quantity returns the quantity of the matching line, 0 when absent.
func (c *Cart) Quantity(productID string, variant Variant) int {
	if i := c.find(productID, variant); i >= 0 {
		return c.Entries[i].Quantity
	}
	return 0
}
