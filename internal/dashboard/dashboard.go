// Package dashboard assembles the home screen: sales figures, low-stock
// alerts and the latest tickets, fetched concurrently so a slow section does
// not hold up the rest.
package dashboard

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/libtak/pos-terminal/internal/domain/sale"
	"github.com/libtak/pos-terminal/internal/gateway"
)

// recentSalesShown bounds the ticket list on the home screen.
const recentSalesShown = 10

// Source is the subset of the Gateway client the dashboard reads from.
type Source interface {
	DashboardStats(ctx context.Context) (*gateway.DashboardStats, error)
	ListProducts(ctx context.Context, search string, page, pageSize int) (*gateway.Paginated[gateway.ProductDetail], error)
	RecentSales(ctx context.Context, limit int) ([]sale.Record, error)
}

// Snapshot is one refresh of the home screen. Sections that failed to load
// carry their error and a zero value; the screen renders what it has.
type Snapshot struct {
	Stats    *gateway.DashboardStats
	StatsErr error

	LowStock    []gateway.ProductDetail
	LowStockErr error

	RecentSales    []sale.Record
	RecentSalesErr error
}

// Complete reports whether every section loaded.
func (s *Snapshot) Complete() bool {
	return s.StatsErr == nil && s.LowStockErr == nil && s.RecentSalesErr == nil
}

// Loader refreshes dashboard snapshots.
type Loader struct {
	source Source
}

// NewLoader creates a Loader over the given source.
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load fetches all sections in parallel. A failing section is recorded on the
// snapshot rather than aborting its siblings; Load itself errors only when
// every section failed, which usually means the Gateway is unreachable.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Stats, snap.StatsErr = l.source.DashboardStats(ctx)
		return nil
	})
	g.Go(func() error {
		snap.LowStock, snap.LowStockErr = l.lowStock(ctx)
		return nil
	})
	g.Go(func() error {
		snap.RecentSales, snap.RecentSalesErr = l.source.RecentSales(ctx, recentSalesShown)
		return nil
	})
	_ = g.Wait()

	if snap.StatsErr != nil && snap.LowStockErr != nil && snap.RecentSalesErr != nil {
		return nil, errors.Wrap(snap.StatsErr, "load dashboard")
	}
	return &snap, nil
}

func (l *Loader) lowStock(ctx context.Context) ([]gateway.ProductDetail, error) {
	page, err := l.source.ListProducts(ctx, "", 1, 0)
	if err != nil {
		return nil, err
	}

	var low []gateway.ProductDetail
	for _, p := range page.Results {
		if p.IsLowStock && p.Active {
			low = append(low, p)
		}
	}
	return low, nil
}
