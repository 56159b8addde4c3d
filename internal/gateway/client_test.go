package gateway

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libtak/pos-terminal/internal/domain/sale"
)

type staticTokens struct {
	token string
}

func (s *staticTokens) Token() string {
	return s.token
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *staticTokens, *int) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &staticTokens{}
	unauthorized := 0
	c, err := New(Config{BaseURL: srv.URL}, tokens, func() { unauthorized++ })
	require.NoError(t, err)
	return c, tokens, &unauthorized
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, &staticTokens{}, nil)
	require.Error(t, err)
}

func TestRequestCarriesAuthAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	c, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{}`))
	}))
	tokens.token = "tok-abc"

	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	c, _, unauthorized := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token invalide"}`))
	}))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 1, *unauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Token invalide", apiErr.Message)
}

func TestErrorMessageFallsBackToFieldErrors(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"barcode":["Un produit avec ce code-barres existe déjà."]}`))
	}))

	_, err := c.CreateProduct(context.Background(), ProductInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "barcode")
	assert.Contains(t, err.Error(), "existe déjà")
}

func TestSearchDecodesPaginatedEnvelope(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stylo", r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(`{
			"count": 1, "next": null, "previous": null,
			"results": [{
				"id": 42, "name": "Stylo Plume", "barcode": "6111000000077",
				"price_ttc": "15.00", "purchase_price": "8.00", "stock": 10
			}]
		}`))
	}))

	products, err := c.Search(context.Background(), "stylo")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(42), products[0].ID)
	assert.True(t, decimal.RequireFromString("15.00").Equal(products[0].PriceTTC))
	assert.Equal(t, 10, products[0].Stock)
}

func TestSearchDecodesBareArray(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Cahier", "barcode": "b", "price_ttc": "12.00", "stock": 3}]`))
	}))

	products, err := c.Search(context.Background(), "cahier")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cahier", products[0].Name)
}

func TestSubmitSale(t *testing.T) {
	var got salePayload
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sales/sales/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 301, "total_ttc": "60.00", "payment_method": "CASH", "created_at": "2026-09-01T10:00:00Z"}`))
	}))

	result, err := c.Submit(context.Background(), &sale.Request{
		Items:         []sale.Item{{ProductID: 42, Quantity: 4}},
		PaymentMethod: sale.PaymentCash,
		Reference:     "ref-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(301), result.ID)
	assert.Equal(t, sale.PaymentCash, result.PaymentMethod)
	assert.True(t, decimal.RequireFromString("60.00").Equal(result.Total))

	require.Len(t, got.Items, 1)
	assert.Equal(t, saleItemPayload{ProductID: 42, Quantity: 4}, got.Items[0])
	assert.Equal(t, "CASH", got.PaymentMethod)
}

func TestSubmitSaleRejectionKeepsGatewayMessage(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Stock insuffisant pour Stylo Plume"}`))
	}))

	_, err := c.Submit(context.Background(), &sale.Request{
		Items:         []sale.Item{{ProductID: 42, Quantity: 99}},
		PaymentMethod: sale.PaymentCash,
	})
	require.Error(t, err)
	assert.Equal(t, "Stock insuffisant pour Stylo Plume", err.Error())
}

func TestAllBarcodesWalksPages(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			next := "/inventory/products/?page=2"
			_ = json.NewEncoder(w).Encode(map[string]any{
				"count": 3, "next": next,
				"results": []map[string]any{
					{"id": 1, "barcode": "aaa"},
					{"id": 2, "barcode": "bbb"},
				},
			})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"count": 3, "next": nil,
				"results": []map[string]any{{"id": 3, "barcode": "ccc"}},
			})
		}
	}))

	codes, err := c.AllBarcodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"aaa", "bbb", "ccc"}, codes)
}

func TestDownloadBackupWritesValidGzip(t *testing.T) {
	payload := `{"users": [{"id": 1}], "products": [{"id": 42, "name": "Stylo"}]}`
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/backup/", r.URL.Path)
		_, _ = w.Write([]byte(payload))
	}))

	dst := filepath.Join(t.TempDir(), "backups", "libtak.json.gz")
	n, err := c.DownloadBackup(context.Background(), dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}

func TestDownloadBackupRejectsInvalidJSON(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"truncated": `))
	}))

	dst := filepath.Join(t.TempDir(), "libtak.json.gz")
	_, err := c.DownloadBackup(context.Background(), dst)
	require.Error(t, err)
	assert.NoFileExists(t, dst)
}

func TestProductStats(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventory/products/stats/", r.URL.Path)
		_, _ = w.Write([]byte(`{"total_products": 1240, "stock_value": "184230.50"}`))
	}))

	stats, err := c.ProductStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1240, stats.TotalProducts)
	assert.True(t, decimal.RequireFromString("184230.50").Equal(stats.StockValue))
}
