package pos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libtak/pos-terminal/internal/domain/product"
)

func newTestProduct(id int64, name, barcode string, price string, stock int) product.Product {
	return product.Product{
		ID:       id,
		Name:     name,
		Barcode:  barcode,
		PriceTTC: decimal.RequireFromString(price),
		Stock:    stock,
	}
}

func TestAddKeepsOneLinePerProduct(t *testing.T) {
	c := NewCart()
	p := newTestProduct(1, "Stylo Bic", "6111000000011", "3.50", 5)

	c.Add(p)
	c.Add(p)
	c.Add(p)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddNeverExceedsStock(t *testing.T) {
	c := NewCart()
	p := newTestProduct(1, "Cahier", "6111000000028", "12.00", 2)

	for range 10 {
		c.Add(p)
	}

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 2, c.Lines()[0].Quantity)
}

func TestAddOutOfStockIsIgnored(t *testing.T) {
	c := NewCart()
	c.Add(newTestProduct(1, "Gomme", "6111000000035", "2.00", 0))

	assert.True(t, c.IsEmpty())
}

func TestAdjustClampsToRange(t *testing.T) {
	c := NewCart()
	p := newTestProduct(1, "Agenda", "6111000000042", "45.00", 4)
	c.Add(p)

	c.Adjust(1, -5)
	assert.Equal(t, 1, c.Lines()[0].Quantity, "decrement below 1 is a no-op")

	c.Adjust(1, +100)
	assert.Equal(t, 4, c.Lines()[0].Quantity, "increment is clamped to stock")

	c.Adjust(999, +1)
	assert.Equal(t, 4, c.Lines()[0].Quantity, "unknown product is a no-op")
}

func TestRemoveDeletesLineOutright(t *testing.T) {
	c := NewCart()
	p1 := newTestProduct(1, "Stylo", "6111000000011", "3.50", 5)
	p2 := newTestProduct(2, "Cahier", "6111000000028", "12.00", 5)
	c.Add(p1)
	c.Add(p2)
	c.Add(p2)

	c.Remove(2)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].Product.ID)

	// Re-adding after removal starts a fresh line.
	c.Add(p2)
	require.Len(t, c.Lines(), 2)
	assert.Equal(t, 1, c.Lines()[1].Quantity)
}

func TestTotalSumsLineTotals(t *testing.T) {
	c := NewCart()
	c.Add(newTestProduct(1, "Stylo", "6111000000011", "3.50", 10))
	c.Add(newTestProduct(2, "Cahier", "6111000000028", "12.25", 10))
	c.Adjust(2, +2)

	// 3.50 + 3*12.25 = 40.25
	assert.True(t, decimal.RequireFromString("40.25").Equal(c.Total()))
	assert.Equal(t, 4, c.ItemCount())
}

func TestClearDiscardsEverything(t *testing.T) {
	c := NewCart()
	c.Add(newTestProduct(1, "Stylo", "6111000000011", "3.50", 10))
	c.Add(newTestProduct(2, "Cahier", "6111000000028", "12.00", 10))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.True(t, decimal.Zero.Equal(c.Total()))
}
