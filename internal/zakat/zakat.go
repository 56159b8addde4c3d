// Package zakat computes the annual zakat due on the store's merchandise.
// The rate on trade goods is 2.5% of the stock's purchase value; the Gateway
// supplies the authoritative capital figure, and this package only does the
// arithmetic and the per-product breakdown shown on screen.
package zakat

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/libtak/pos-terminal/internal/gateway"
)

// Rate is the zakat rate on trade merchandise: 2.5%.
var Rate = decimal.New(25, -3)

// Due returns the zakat owed on the given capital. Non-positive capital owes
// nothing.
func Due(capital decimal.Decimal) decimal.Decimal {
	if capital.Sign() <= 0 {
		return decimal.Zero
	}
	return capital.Mul(Rate).Round(2)
}

// ProductRow is one line of the per-product breakdown.
type ProductRow struct {
	Name       string
	Stock      int
	UnitCost   decimal.Decimal
	StockValue decimal.Decimal
	ZakatDue   decimal.Decimal
}

// Summary is the store-wide zakat figure plus the breakdown for the page of
// products currently on screen.
type Summary struct {
	// TotalProducts and Capital cover the whole catalog, not just the page.
	TotalProducts int
	Capital       decimal.Decimal
	TotalDue      decimal.Decimal

	Rows []ProductRow
	// PageValue and PageDue subtotal the visible rows.
	PageValue decimal.Decimal
	PageDue   decimal.Decimal
}

// StatsSource provides the catalog-wide aggregation.
type StatsSource interface {
	ProductStats(ctx context.Context) (*gateway.ProductStats, error)
	ListProducts(ctx context.Context, search string, page, pageSize int) (*gateway.Paginated[gateway.ProductDetail], error)
}

// Calculator builds zakat summaries from Gateway data.
type Calculator struct {
	source StatsSource
}

// NewCalculator creates a Calculator backed by the given source.
func NewCalculator(source StatsSource) *Calculator {
	return &Calculator{source: source}
}

// Summarize fetches the catalog aggregate and one page of products and
// computes the zakat figures. The total is always derived from the Gateway's
// stock value so it stays correct regardless of which page is shown.
func (c *Calculator) Summarize(ctx context.Context, search string, page, pageSize int) (*Summary, error) {
	stats, err := c.source.ProductStats(ctx)
	if err != nil {
		return nil, err
	}

	listed, err := c.source.ListProducts(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		TotalProducts: stats.TotalProducts,
		Capital:       stats.StockValue,
		TotalDue:      Due(stats.StockValue),
	}
	for _, p := range listed.Results {
		value := p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Stock)))
		row := ProductRow{
			Name:       p.Name,
			Stock:      p.Stock,
			UnitCost:   p.PurchasePrice,
			StockValue: value,
			ZakatDue:   Due(value),
		}
		s.Rows = append(s.Rows, row)
		s.PageValue = s.PageValue.Add(value)
		s.PageDue = s.PageDue.Add(row.ZakatDue)
	}
	return s, nil
}
