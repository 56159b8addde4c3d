package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a read-only snapshot of a catalog item as reported by the
// Gateway. The POS session never mutates it; Stock reflects the value at the
// time of the last fetch.
type Product struct {
	ID            int64
	Name          string
	Barcode       string
	PriceTTC      decimal.Decimal
	PurchasePrice decimal.Decimal
	Stock         int
	CategoryName  string
	ImageURL      string
}

// InStock reports whether at least one unit is available for sale.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// LineTotal returns the tax-inclusive price of qty units.
func (p Product) LineTotal(qty int) decimal.Decimal {
	return p.PriceTTC.Mul(decimal.NewFromInt(int64(qty)))
}

// Searcher provides free-text product lookup against the Gateway.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Product, error)
}
