package pos

import (
	"github.com/shopspring/decimal"

	"github.com/libtak/pos-terminal/internal/domain/product"
)

// Line pairs a product snapshot with the quantity being sold.
type Line struct {
	Product  product.Product
	Quantity int
}

// Total returns the tax-inclusive price of this line.
func (l Line) Total() decimal.Decimal {
	return l.Product.LineTotal(l.Quantity)
}

// Cart is the ordered set of lines for the sale in progress, keyed by product
// ID: a product appears at most once, and adding it again increments the
// existing line. Stock limits are soft guards — an add or increment that
// would exceed the product's known stock is silently ignored, matching the
// cashier-facing behaviour where the button simply does nothing.
//
// The cart lives only in memory for the duration of the session.
type Cart struct {
	lines []Line
	index map[int64]int
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{index: make(map[int64]int)}
}

// Add puts one unit of p in the cart. If p already has a line its quantity
// grows by one, capped at p.Stock. A product with zero stock is not added.
func (c *Cart) Add(p product.Product) {
	if i, ok := c.index[p.ID]; ok {
		if c.lines[i].Quantity < p.Stock {
			c.lines[i].Quantity++
		}
		return
	}
	if !p.InStock() {
		return
	}
	c.index[p.ID] = len(c.lines)
	c.lines = append(c.lines, Line{Product: p, Quantity: 1})
}

// Adjust changes a line's quantity by delta, clamped to [1, stock]. Unknown
// product IDs and out-of-range results are no-ops.
func (c *Cart) Adjust(productID int64, delta int) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	q := c.lines[i].Quantity + delta
	if q < 1 {
		q = 1
	}
	if max := c.lines[i].Product.Stock; q > max {
		q = max
	}
	c.lines[i].Quantity = q
}

// Remove deletes a line outright regardless of its quantity.
func (c *Cart) Remove(productID int64) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].Product.ID] = j
	}
}

// Clear discards all lines unconditionally. Confirmation is the caller's job.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[int64]int)
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total returns the sum of line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}
