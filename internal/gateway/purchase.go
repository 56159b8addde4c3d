package gateway

import (
	"context"
	"fmt"
	"net/http"
)

// ListPurchaseOrders returns all purchase orders, newest first.
func (c *Client) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	return getList[PurchaseOrder](ctx, c, "/inventory/purchase-orders/", nil)
}

// CreatePurchaseOrder opens a draft order with the given supplier and lines.
func (c *Client) CreatePurchaseOrder(ctx context.Context, in PurchaseOrderInput) (*PurchaseOrder, error) {
	var out PurchaseOrder
	if err := c.do(ctx, http.MethodPost, "/inventory/purchase-orders/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendPurchaseOrder marks a draft as sent to the supplier.
func (c *Client) SendPurchaseOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/inventory/purchase-orders/%d/send/", id), nil, nil, nil)
}

// ReceivePurchaseOrder records delivery; the Gateway adjusts stock.
func (c *Client) ReceivePurchaseOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/inventory/purchase-orders/%d/receive/", id), nil, nil, nil)
}

// CancelPurchaseOrder cancels a draft or sent order.
func (c *Client) CancelPurchaseOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/inventory/purchase-orders/%d/cancel/", id), nil, nil, nil)
}
