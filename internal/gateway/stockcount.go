package gateway

import (
	"context"
	"fmt"
	"net/http"
)

// ListStockCounts returns all physical count sessions.
func (c *Client) ListStockCounts(ctx context.Context) ([]StockCount, error) {
	return getList[StockCount](ctx, c, "/inventory/counts/", nil)
}

// CreateStockCount opens a new count session.
func (c *Client) CreateStockCount(ctx context.Context, in StockCountInput) (*StockCount, error) {
	var out StockCount
	if err := c.do(ctx, http.MethodPost, "/inventory/counts/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStockCountItems replaces the counted quantities of an open session.
func (c *Client) UpdateStockCountItems(ctx context.Context, id int64, items []StockCountItem) (*StockCount, error) {
	body := map[string]any{"items": items}
	var out StockCount
	path := fmt.Sprintf("/inventory/counts/%d/", id)
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteStockCount closes the counting phase.
func (c *Client) CompleteStockCount(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/inventory/counts/%d/complete/", id), nil, nil, nil)
}

// ValidateStockCount applies the count's discrepancies to stock.
func (c *Client) ValidateStockCount(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/inventory/counts/%d/validate/", id), nil, nil, nil)
}
