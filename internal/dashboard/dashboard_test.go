package dashboard

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libtak/pos-terminal/internal/domain/sale"
	"github.com/libtak/pos-terminal/internal/gateway"
)

type mockSource struct {
	stats    *gateway.DashboardStats
	statsErr error
	page     *gateway.Paginated[gateway.ProductDetail]
	pageErr  error
	sales    []sale.Record
	salesErr error
}

func (m *mockSource) DashboardStats(context.Context) (*gateway.DashboardStats, error) {
	return m.stats, m.statsErr
}

func (m *mockSource) ListProducts(context.Context, string, int, int) (*gateway.Paginated[gateway.ProductDetail], error) {
	return m.page, m.pageErr
}

func (m *mockSource) RecentSales(context.Context, int) ([]sale.Record, error) {
	return m.sales, m.salesErr
}

func healthySource() *mockSource {
	return &mockSource{
		stats: &gateway.DashboardStats{
			TodayRevenue:  decimal.RequireFromString("1250.00"),
			LowStockCount: 1,
		},
		page: &gateway.Paginated[gateway.ProductDetail]{
			Results: []gateway.ProductDetail{
				{Name: "Stylo Plume", Stock: 2, MinStock: 5, IsLowStock: true, Active: true},
				{Name: "Cahier 96p", Stock: 40, MinStock: 5, Active: true},
				{Name: "Ancien article", Stock: 0, IsLowStock: true, Active: false},
			},
		},
		sales: []sale.Record{{ID: 301, Total: decimal.RequireFromString("60.00")}},
	}
}

func TestLoadAllSections(t *testing.T) {
	snap, err := NewLoader(healthySource()).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Complete())

	assert.True(t, decimal.RequireFromString("1250.00").Equal(snap.Stats.TodayRevenue))

	require.Len(t, snap.LowStock, 1)
	assert.Equal(t, "Stylo Plume", snap.LowStock[0].Name)

	require.Len(t, snap.RecentSales, 1)
	assert.Equal(t, int64(301), snap.RecentSales[0].ID)
}

func TestLoadToleratesOneFailedSection(t *testing.T) {
	src := healthySource()
	src.statsErr = errors.New("stats timed out")

	snap, err := NewLoader(src).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Complete())

	assert.Nil(t, snap.Stats)
	require.Error(t, snap.StatsErr)
	assert.Len(t, snap.LowStock, 1)
	assert.Len(t, snap.RecentSales, 1)
}

func TestLoadFailsWhenEverythingFails(t *testing.T) {
	down := errors.New("connection refused")
	src := &mockSource{statsErr: down, pageErr: down, salesErr: down}

	_, err := NewLoader(src).Load(context.Background())
	require.Error(t, err)
}
