package receipt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/libtak/pos-terminal/internal/domain/product"
	"github.com/libtak/pos-terminal/internal/domain/sale"
	"github.com/libtak/pos-terminal/internal/pos"
)

func testPrinter(t *testing.T, cfg Config) *Printer {
	t.Helper()
	if cfg.StoreName == "" {
		cfg.StoreName = "Librairie Centrale"
	}
	return New(zaptest.NewLogger(t), cfg)
}

func saleResult() *sale.Result {
	return &sale.Result{
		ID:            301,
		Total:         decimal.RequireFromString("60.00"),
		PaymentMethod: sale.PaymentCash,
		CreatedAt:     time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
	}
}

func saleLines() []pos.Line {
	return []pos.Line{
		{
			Product: product.Product{
				ID:       42,
				Name:     "Stylo Plume",
				PriceTTC: decimal.RequireFromString("15.00"),
				Stock:    10,
			},
			Quantity: 4,
		},
	}
}

func TestRenderCashTicket(t *testing.T) {
	p := testPrinter(t, Config{
		StoreAddress: "12 Rue des Écoles",
		FooterLine:   "Retours sous 7 jours",
	})

	doc, err := p.Render(saleResult(), saleLines(),
		decimal.RequireFromString("100.00"), decimal.RequireFromString("40.00"))
	require.NoError(t, err)

	assert.Contains(t, doc, "Librairie Centrale")
	assert.Contains(t, doc, "12 Rue des Écoles")
	assert.Contains(t, doc, "Ticket N° 00000301")
	assert.Contains(t, doc, "Stylo Plume")
	assert.Contains(t, doc, "4 x 15.00")
	assert.Contains(t, doc, "60.00 DH")
	assert.Contains(t, doc, "Espèces")
	assert.Contains(t, doc, "100.00 DH")
	assert.Contains(t, doc, "40.00 DH")
	assert.Contains(t, doc, "Retours sous 7 jours")
	assert.Contains(t, doc, "*00000301*")
}

func TestRenderCardTicketOmitsCashLines(t *testing.T) {
	p := testPrinter(t, Config{})

	result := saleResult()
	result.PaymentMethod = sale.PaymentCard
	doc, err := p.Render(result, saleLines(), decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	assert.Contains(t, doc, "Carte Bancaire")
	assert.NotContains(t, doc, "Rendu")
	assert.NotContains(t, doc, "Reçu")
}

func TestPrintSaleHandsOffDocument(t *testing.T) {
	opened := make(chan string, 1)
	p := testPrinter(t, Config{
		Open: func(path string) error {
			opened <- path
			return nil
		},
	})

	p.PrintSale(saleResult(), saleLines(),
		decimal.RequireFromString("100.00"), decimal.RequireFromString("40.00"))

	select {
	case path := <-opened:
		assert.NotEmpty(t, path)
	case <-time.After(time.Second):
		t.Fatal("document was never handed to the opener")
	}
}

func TestTicketNumberPadding(t *testing.T) {
	assert.Equal(t, "00000007", TicketNumber(7))
	assert.Equal(t, "12345678", TicketNumber(12345678))
}

func TestPaymentLabels(t *testing.T) {
	assert.Equal(t, "Espèces", PaymentLabel(sale.PaymentCash))
	assert.Equal(t, "Carte Bancaire", PaymentLabel(sale.PaymentCard))
	assert.Equal(t, "Virement", PaymentLabel(sale.PaymentTransfer))
	assert.Equal(t, "Espèces", PaymentLabel(""))
}
