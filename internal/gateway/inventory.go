package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/libtak/pos-terminal/internal/domain/product"
)

// catalogPageSize is the chunk size used when walking the whole catalog for
// the barcode index.
const catalogPageSize = 1000

// getList decodes a list endpoint that may answer with either the paginated
// envelope or a bare array, mirroring the tolerant reads of the original
// client.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, err
	}

	var page Paginated[T]
	if err := json.Unmarshal(raw, &page); err == nil && page.Results != nil {
		return page.Results, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(err, "decode list %s", path)
	}
	return items, nil
}

// Search implements product.Searcher for the POS screen: free-text query,
// snapshots only.
func (c *Client) Search(ctx context.Context, query string) ([]product.Product, error) {
	q := url.Values{"search": {query}}
	details, err := getList[ProductDetail](ctx, c, "/inventory/products/", q)
	if err != nil {
		return nil, err
	}

	snapshots := make([]product.Product, len(details))
	for i, d := range details {
		snapshots[i] = d.Snapshot()
	}
	return snapshots, nil
}

// ListProducts returns one page of full catalog records.
func (c *Client) ListProducts(ctx context.Context, search string, page, pageSize int) (*Paginated[ProductDetail], error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	var out Paginated[ProductDetail]
	if err := c.do(ctx, http.MethodGet, "/inventory/products/", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProduct adds a catalog record.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*ProductDetail, error) {
	var out ProductDetail
	if err := c.do(ctx, http.MethodPost, "/inventory/products/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct patches a catalog record.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*ProductDetail, error) {
	var out ProductDetail
	path := fmt.Sprintf("/inventory/products/%d/", id)
	if err := c.do(ctx, http.MethodPatch, path, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a catalog record.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/inventory/products/%d/", id), nil, nil, nil)
}

// ProductStats returns the catalog-wide aggregation (count and stock value).
func (c *Client) ProductStats(ctx context.Context) (*ProductStats, error) {
	var out ProductStats
	if err := c.do(ctx, http.MethodGet, "/inventory/products/stats/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllBarcodes walks the whole catalog and returns every barcode, used to
// build the scan prefilter at session start.
func (c *Client) AllBarcodes(ctx context.Context) ([]string, error) {
	var codes []string
	for page := 1; ; page++ {
		chunk, err := c.ListProducts(ctx, "", page, catalogPageSize)
		if err != nil {
			return nil, errors.Wrapf(err, "list catalog page %d", page)
		}
		for _, p := range chunk.Results {
			if p.Barcode != "" {
				codes = append(codes, p.Barcode)
			}
		}
		if chunk.Next == nil || len(chunk.Results) == 0 {
			return codes, nil
		}
	}
}

// ListCategories returns all product categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	return getList[Category](ctx, c, "/inventory/categories/", nil)
}

// ListSuppliers returns suppliers, optionally filtered by a search term.
func (c *Client) ListSuppliers(ctx context.Context, search string) ([]Supplier, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	return getList[Supplier](ctx, c, "/inventory/suppliers/", q)
}

// CreateSupplier adds a supplier.
func (c *Client) CreateSupplier(ctx context.Context, in SupplierInput) (*Supplier, error) {
	var out Supplier
	if err := c.do(ctx, http.MethodPost, "/inventory/suppliers/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSupplier patches a supplier.
func (c *Client) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (*Supplier, error) {
	var out Supplier
	path := fmt.Sprintf("/inventory/suppliers/%d/", id)
	if err := c.do(ctx, http.MethodPatch, path, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSupplier removes a supplier.
func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/inventory/suppliers/%d/", id), nil, nil, nil)
}

// ListStockMovements returns the audited stock changes for a product, or all
// recent movements when productID is zero.
func (c *Client) ListStockMovements(ctx context.Context, productID int64) ([]StockMovement, error) {
	q := url.Values{}
	if productID > 0 {
		q.Set("product", strconv.FormatInt(productID, 10))
	}
	return getList[StockMovement](ctx, c, "/inventory/stock-movements/", q)
}
