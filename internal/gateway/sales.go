package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/libtak/pos-terminal/internal/domain/sale"
)

// saleItemPayload matches the sales endpoint's item shape.
type saleItemPayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type salePayload struct {
	Items         []saleItemPayload `json:"items"`
	PaymentMethod string            `json:"payment_method"`
	Reference     string            `json:"reference,omitempty"`
}

type saleRecordItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPriceHT decimal.Decimal `json:"unit_price_ht"`
}

type saleRecord struct {
	ID            int64            `json:"id"`
	TotalTTC      decimal.Decimal  `json:"total_ttc"`
	PaymentMethod string           `json:"payment_method"`
	CreatedAt     time.Time        `json:"created_at"`
	Items         []saleRecordItem `json:"items"`
}

// Submit implements sale.Submitter: one checkout request, one authoritative
// answer. Stock races lost to another terminal come back as an APIError with
// the Gateway's message.
func (c *Client) Submit(ctx context.Context, req *sale.Request) (*sale.Result, error) {
	payload := salePayload{
		Items:         make([]saleItemPayload, len(req.Items)),
		PaymentMethod: string(req.PaymentMethod),
		Reference:     req.Reference,
	}
	for i, item := range req.Items {
		payload.Items[i] = saleItemPayload{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	var rec saleRecord
	if err := c.do(ctx, http.MethodPost, "/sales/sales/", nil, payload, &rec); err != nil {
		return nil, err
	}
	return &sale.Result{
		ID:            rec.ID,
		Total:         rec.TotalTTC,
		PaymentMethod: sale.PaymentMethod(rec.PaymentMethod),
		CreatedAt:     rec.CreatedAt,
	}, nil
}

// RecentSales returns the latest sales, newest first, for the returns screen.
func (c *Client) RecentSales(ctx context.Context, limit int) ([]sale.Record, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	recs, err := getList[saleRecord](ctx, c, "/sales/sales/", q)
	if err != nil {
		return nil, err
	}

	out := make([]sale.Record, len(recs))
	for i, r := range recs {
		items := make([]sale.RecordItem, len(r.Items))
		for j, it := range r.Items {
			items[j] = sale.RecordItem{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPriceHT,
			}
		}
		out[i] = sale.Record{
			ID:        r.ID,
			Total:     r.TotalTTC,
			CreatedAt: r.CreatedAt,
			Items:     items,
		}
	}
	return out, nil
}

// ListReturns returns all customer returns.
func (c *Client) ListReturns(ctx context.Context) ([]Return, error) {
	return getList[Return](ctx, c, "/sales/returns/", nil)
}

// CreateReturn opens a pending return against a past sale.
func (c *Client) CreateReturn(ctx context.Context, in ReturnInput) (*Return, error) {
	var out Return
	if err := c.do(ctx, http.MethodPost, "/sales/returns/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveReturn moves a pending return to approved.
func (c *Client) ApproveReturn(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/sales/returns/%d/approve/", id), nil, nil, nil)
}

// RejectReturn moves a pending return to rejected.
func (c *Client) RejectReturn(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/sales/returns/%d/reject/", id), nil, nil, nil)
}

// CompleteReturn finishes an approved return; the Gateway restocks the items.
func (c *Client) CompleteReturn(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/sales/returns/%d/complete/", id), nil, nil, nil)
}
