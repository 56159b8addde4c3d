package term

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/libtak/pos-terminal/internal/dashboard"
	"github.com/libtak/pos-terminal/internal/domain/product"
	"github.com/libtak/pos-terminal/internal/domain/sale"
	"github.com/libtak/pos-terminal/internal/gateway"
	"github.com/libtak/pos-terminal/internal/pos"
	"github.com/libtak/pos-terminal/internal/scanner"
)

const styloBarcode = "6111000000077"

func stylo() product.Product {
	return product.Product{
		ID:       42,
		Name:     "Stylo Plume",
		Barcode:  styloBarcode,
		PriceTTC: decimal.RequireFromString("15.00"),
		Stock:    10,
	}
}

type mockSearcher struct {
	queries []string
	found   []product.Product
}

func (m *mockSearcher) Search(_ context.Context, query string) ([]product.Product, error) {
	m.queries = append(m.queries, query)
	return m.found, nil
}

type mockSubmitter struct {
	mu       sync.Mutex
	requests []*sale.Request
}

func (m *mockSubmitter) Submit(_ context.Context, req *sale.Request) (*sale.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return &sale.Result{ID: 301, Total: decimal.RequireFromString("15.00")}, nil
}

func (m *mockSubmitter) submitted() []*sale.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*sale.Request(nil), m.requests...)
}

type mockCache struct{}

func (mockCache) Invalidate(string) {}

// scriptClock makes the first slowCalls clock reads 200ms apart (human
// typing) and the rest 1ms apart (a scanner burst).
type scriptClock struct {
	calls     int
	slowCalls int
	at        time.Time
}

func (c *scriptClock) now() time.Time {
	step := time.Millisecond
	if c.calls < c.slowCalls {
		step = 200 * time.Millisecond
	}
	c.calls++
	c.at = c.at.Add(step)
	return c.at
}

type uiFixture struct {
	ui        *UI
	session   *pos.Session
	searcher  *mockSearcher
	submitter *mockSubmitter
	out       *bytes.Buffer
	logouts   int
}

func newFixture(t *testing.T, input string, clock func() time.Time, barcodes *pos.BarcodeIndex, sessionCfg pos.Config) *uiFixture {
	t.Helper()
	lg := zaptest.NewLogger(t)

	f := &uiFixture{
		searcher:  &mockSearcher{found: []product.Product{stylo()}},
		submitter: &mockSubmitter{},
		out:       &bytes.Buffer{},
	}
	f.session = pos.NewSession(lg, sessionCfg, f.searcher, f.submitter, mockCache{}, barcodes, nil)
	f.ui = New(lg, Config{
		In:       strings.NewReader(input),
		Out:      f.out,
		RawFD:    -1,
		Currency: "DH",
		Scanner:  scanner.Config{Now: clock},
		Logout:   func() { f.logouts++ },
	}, f.session)
	return f
}

func TestKeyboardDecodes(t *testing.T) {
	kb := NewKeyboard(strings.NewReader("a\r\x7f\t\x0b\x10\x1b[A\x1b[B\x03"))

	want := []Key{
		{Kind: KeyRune, Rune: 'a'},
		{Kind: KeyEnter},
		{Kind: KeyBackspace},
		{Kind: KeyTab},
		{Kind: KeyCtrlK},
		{Kind: KeyCtrlP},
		{Kind: KeyUp},
		{Kind: KeyDown},
		{Kind: KeyCtrlC},
	}
	for _, w := range want {
		got, err := kb.Next()
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
}

func TestTypedEnterRunsSearch(t *testing.T) {
	clock := &scriptClock{slowCalls: 100}
	f := newFixture(t, "stylo\r", clock.now, nil, pos.Config{})

	require.NoError(t, f.ui.Run(context.Background()))

	require.Equal(t, []string{"stylo"}, f.searcher.queries)
	v := f.session.Snapshot()
	require.Len(t, v.Results, 1)
	assert.Empty(t, v.Lines)
}

func TestScannedBurstAddsToCart(t *testing.T) {
	// "stylo"+Enter typed at human speed loads the results, then the
	// barcode arrives as a burst and must go straight into the cart.
	clock := &scriptClock{slowCalls: 6}
	barcodes := pos.NewBarcodeIndex([]string{styloBarcode})
	f := newFixture(t, "stylo\r"+styloBarcode+"\r", clock.now, barcodes, pos.Config{})

	require.NoError(t, f.ui.Run(context.Background()))

	// Exactly one search: the burst never became a query.
	require.Equal(t, []string{"stylo"}, f.searcher.queries)
	v := f.session.Snapshot()
	require.Len(t, v.Lines, 1)
	assert.Equal(t, int64(42), v.Lines[0].Product.ID)
	assert.Equal(t, 1, v.Lines[0].Quantity)
}

func TestSelectionEnterActivatesResult(t *testing.T) {
	clock := &scriptClock{slowCalls: 100}
	f := newFixture(t, "stylo\r\r", clock.now, nil, pos.Config{})

	require.NoError(t, f.ui.Run(context.Background()))

	v := f.session.Snapshot()
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "Stylo Plume", v.Lines[0].Product.Name)
}

func TestCashPaymentFlow(t *testing.T) {
	clock := &scriptClock{slowCalls: 100}
	cfg := pos.Config{
		AfterFunc: func(time.Duration, func()) *time.Timer { return nil },
	}
	f := newFixture(t, "stylo\r\r\x10100\r", clock.now, nil, cfg)

	require.NoError(t, f.ui.Run(context.Background()))

	require.Eventually(t, func() bool {
		return len(f.submitter.submitted()) == 1
	}, time.Second, 5*time.Millisecond)

	req := f.submitter.submitted()[0]
	require.Len(t, req.Items, 1)
	assert.Equal(t, sale.Item{ProductID: 42, Quantity: 1}, req.Items[0])
	assert.Equal(t, sale.PaymentCash, req.PaymentMethod)
}

func TestInsufficientTenderDoesNotSubmit(t *testing.T) {
	clock := &scriptClock{slowCalls: 100}
	f := newFixture(t, "stylo\r\r\x1010\r", clock.now, nil, pos.Config{})

	require.NoError(t, f.ui.Run(context.Background()))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, f.submitter.submitted())
	v := f.session.Snapshot()
	assert.True(t, v.PaymentOpen)
	assert.True(t, v.Change.IsNegative())
}

func TestDashboardOverlay(t *testing.T) {
	clock := &scriptClock{slowCalls: 100}
	f := newFixture(t, "\x04", clock.now, nil, pos.Config{})

	loads := 0
	f.ui.cfg.LoadDashboard = func(context.Context) (*dashboard.Snapshot, error) {
		loads++
		return &dashboard.Snapshot{
			Stats: &gateway.DashboardStats{
				TodayRevenue: decimal.RequireFromString("1250.00"),
			},
		}, nil
	}

	require.NoError(t, f.ui.Run(context.Background()))

	assert.Equal(t, 1, loads)
	assert.Contains(t, f.out.String(), "TABLEAU DE BORD")
	assert.Contains(t, f.out.String(), "1250.00 DH")
}

func TestCtrlCQuits(t *testing.T) {
	clock := &scriptClock{slowCalls: 100}
	f := newFixture(t, "\x03", clock.now, nil, pos.Config{})

	err := f.ui.Run(context.Background())
	require.ErrorIs(t, err, ErrQuit)
}

func TestPanicShowsRecoveryScreen(t *testing.T) {
	clock := &scriptClock{slowCalls: 100}
	boom := true
	cfg := pos.Config{
		OnChange: func() {
			if boom {
				boom = false
				panic("renderer exploded")
			}
		},
	}
	// Tab trips the panic, then the operator chooses logout.
	f := newFixture(t, "\td", clock.now, nil, cfg)

	require.NoError(t, f.ui.Run(context.Background()))

	assert.Equal(t, 1, f.logouts)
	assert.Contains(t, f.out.String(), "erreur inattendue")
}
