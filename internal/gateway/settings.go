package gateway

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// AppSettings is the store-wide configuration document. The Gateway returns
// a loosely-typed object (several fields were added over the life of the
// backend), so values are kept raw and read through typed accessors.
type AppSettings map[string]any

// StoreName returns the configured store name.
func (s AppSettings) StoreName() string {
	return cast.ToString(s["store_name"])
}

// StoreAddress returns the configured address line.
func (s AppSettings) StoreAddress() string {
	return cast.ToString(s["store_address"])
}

// StorePhone returns the configured phone number.
func (s AppSettings) StorePhone() string {
	return cast.ToString(s["store_phone"])
}

// CurrencySymbol returns the display symbol, defaulting to dirhams.
func (s AppSettings) CurrencySymbol() string {
	if v := cast.ToString(s["currency_symbol"]); v != "" {
		return v
	}
	return "DH"
}

// DefaultTVA returns the default VAT rate in percent.
func (s AppSettings) DefaultTVA() decimal.Decimal {
	d, err := decimal.NewFromString(cast.ToString(s["default_tva"]))
	if err != nil {
		return decimal.NewFromInt(20)
	}
	return d
}

// PrintHeader returns the extra receipt header line.
func (s AppSettings) PrintHeader() string {
	return cast.ToString(s["print_header"])
}

// PrintFooter returns the receipt footer line.
func (s AppSettings) PrintFooter() string {
	return cast.ToString(s["print_footer"])
}

// CashierCanViewStock reports the cashier stock-visibility switch.
func (s AppSettings) CashierCanViewStock() bool {
	return cast.ToBool(s["cashier_can_view_stock"])
}

// CashierCanManageStock reports the cashier stock-management switch.
func (s AppSettings) CashierCanManageStock() bool {
	return cast.ToBool(s["cashier_can_manage_stock"])
}

// GetAppSettings reads the store configuration.
func (c *Client) GetAppSettings(ctx context.Context) (AppSettings, error) {
	var out AppSettings
	if err := c.do(ctx, http.MethodGet, "/auth/settings/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAppSettings patches the store configuration with the given fields.
func (c *Client) UpdateAppSettings(ctx context.Context, fields map[string]any) (AppSettings, error) {
	var out AppSettings
	if err := c.do(ctx, http.MethodPatch, "/auth/settings/", nil, fields, &out); err != nil {
		return nil, err
	}
	return out, nil
}
