package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/libtak/pos-terminal/internal/domain/product"
)

// Paginated is the Gateway's list envelope. Endpoints that are not paginated
// return a bare array; decoding handles both (see getList).
type Paginated[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ProductDetail is the full catalog record used by the inventory screen.
// Monetary fields arrive as JSON strings (fixed-point decimals on the wire).
type ProductDetail struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Barcode          string          `json:"barcode"`
	Description      string          `json:"description"`
	PurchasePrice    decimal.Decimal `json:"purchase_price"`
	SalePriceHT      decimal.Decimal `json:"sale_price_ht"`
	TVA              decimal.Decimal `json:"tva"`
	PriceTTC         decimal.Decimal `json:"price_ttc"`
	ProfitMargin     decimal.Decimal `json:"profit_margin"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
	Stock            int             `json:"stock"`
	MinStock         int             `json:"min_stock"`
	StockValue       decimal.Decimal `json:"stock_value"`
	IsLowStock       bool            `json:"is_low_stock"`
	CategoryID       *int64          `json:"category"`
	CategoryName     string          `json:"category_name"`
	SupplierID       *int64          `json:"supplier"`
	SupplierName     string          `json:"supplier_name"`
	ImageURL         string          `json:"image_url"`
	Active           bool            `json:"active"`
}

// Snapshot reduces the full record to the read-only POS snapshot.
func (p ProductDetail) Snapshot() product.Product {
	return product.Product{
		ID:            p.ID,
		Name:          p.Name,
		Barcode:       p.Barcode,
		PriceTTC:      p.PriceTTC,
		PurchasePrice: p.PurchasePrice,
		Stock:         p.Stock,
		CategoryName:  p.CategoryName,
		ImageURL:      p.ImageURL,
	}
}

// ProductInput is the writable subset for create/update.
type ProductInput struct {
	Name          string          `json:"name"`
	Barcode       string          `json:"barcode"`
	Description   string          `json:"description,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePriceHT   decimal.Decimal `json:"sale_price_ht"`
	TVA           decimal.Decimal `json:"tva"`
	Stock         int             `json:"stock"`
	MinStock      int             `json:"min_stock"`
	CategoryID    *int64          `json:"category,omitempty"`
	SupplierID    *int64          `json:"supplier,omitempty"`
	Active        bool            `json:"active"`
}

// ProductStats is the database-side aggregation used by the Zakat screen.
type ProductStats struct {
	TotalProducts int             `json:"total_products"`
	StockValue    decimal.Decimal `json:"stock_value"`
}

// Category groups products on the inventory screen.
type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	Color         string `json:"color"`
	ProductsCount int    `json:"products_count"`
}

// Supplier is a purchasing contact.
type Supplier struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ContactName   string `json:"contact_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Notes         string `json:"notes"`
	Active        bool   `json:"active"`
	ProductsCount int    `json:"products_count"`
	ImageURL      string `json:"image_url"`
}

// SupplierInput is the writable subset for create/update.
type SupplierInput struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Active      bool   `json:"active"`
}

// StockMovement is one audited stock change.
type StockMovement struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product"`
	ProductName   string          `json:"product_name"`
	MovementType  string          `json:"movement_type"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	StockBefore   int             `json:"stock_before"`
	StockAfter    int             `json:"stock_after"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
	CreatedByName string          `json:"created_by_name"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Purchase order lifecycle states as reported by the Gateway.
const (
	PurchaseOrderDraft     = "DRAFT"
	PurchaseOrderSent      = "SENT"
	PurchaseOrderReceived  = "RECEIVED"
	PurchaseOrderCancelled = "CANCELLED"
)

// PurchaseOrderItem is one ordered product line.
type PurchaseOrderItem struct {
	ID          int64           `json:"id,omitempty"`
	ProductID   int64           `json:"product"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PurchaseOrder is an order to a supplier.
type PurchaseOrder struct {
	ID           int64               `json:"id"`
	Number       string              `json:"number"`
	SupplierID   int64               `json:"supplier"`
	SupplierName string              `json:"supplier_name"`
	Status       string              `json:"status"`
	Items        []PurchaseOrderItem `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	Notes        string              `json:"notes"`
	CreatedAt    time.Time           `json:"created_at"`
}

// PurchaseOrderInput creates a draft order.
type PurchaseOrderInput struct {
	SupplierID int64               `json:"supplier"`
	Items      []PurchaseOrderItem `json:"items"`
	Notes      string              `json:"notes,omitempty"`
}

// Return lifecycle states as reported by the Gateway.
const (
	ReturnPending   = "PENDING"
	ReturnApproved  = "APPROVED"
	ReturnRejected  = "REJECTED"
	ReturnCompleted = "COMPLETED"
)

// ReturnItem is one returned product line.
type ReturnItem struct {
	ID          int64           `json:"id,omitempty"`
	ProductID   int64           `json:"product"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price,omitempty"`
}

// Return is a customer return against a past sale.
type Return struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"sale"`
	Status    string          `json:"status"`
	Reason    string          `json:"reason"`
	Items     []ReturnItem    `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReturnInput creates a pending return.
type ReturnInput struct {
	SaleID int64        `json:"sale"`
	Reason string       `json:"reason"`
	Items  []ReturnItem `json:"items"`
}

// Stock count lifecycle states as reported by the Gateway.
const (
	StockCountInProgress = "IN_PROGRESS"
	StockCountCompleted  = "COMPLETED"
	StockCountValidated  = "VALIDATED"
)

// StockCountItem records one counted product.
type StockCountItem struct {
	ID          int64  `json:"id,omitempty"`
	ProductID   int64  `json:"product"`
	ProductName string `json:"product_name,omitempty"`
	Expected    int    `json:"expected_quantity"`
	Counted     int    `json:"counted_quantity"`
}

// StockCount is a physical inventory count session.
type StockCount struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Status    string           `json:"status"`
	Items     []StockCountItem `json:"items"`
	CreatedAt time.Time        `json:"created_at"`
}

// StockCountInput opens a new count.
type StockCountInput struct {
	Name  string           `json:"name"`
	Items []StockCountItem `json:"items,omitempty"`
}

// User is an operator account as managed on the users screen.
type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Role           string     `json:"role"`
	RoleDisplay    string     `json:"role_display"`
	CanViewStock   bool       `json:"can_view_stock"`
	CanManageStock bool       `json:"can_manage_stock"`
	Phone          string     `json:"phone"`
	IsActive       bool       `json:"is_active"`
	DateJoined     time.Time  `json:"date_joined"`
	LastLogin      *time.Time `json:"last_login"`
}

// UserInput creates an operator account.
type UserInput struct {
	Username        string `json:"username"`
	Email           string `json:"email,omitempty"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Role            string `json:"role"`
	Phone           string `json:"phone,omitempty"`
	CanViewStock    bool   `json:"can_view_stock"`
	CanManageStock  bool   `json:"can_manage_stock"`
}

// UserUpdate patches an operator account; nil fields are left unchanged.
type UserUpdate struct {
	Email          *string `json:"email,omitempty"`
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	Role           *string `json:"role,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
	CanViewStock   *bool   `json:"can_view_stock,omitempty"`
	CanManageStock *bool   `json:"can_manage_stock,omitempty"`
}

// ReportSettings controls the Gateway's scheduled email reports.
type ReportSettings struct {
	EmailRecipients string `json:"email_recipients"`
	SenderEmail     string `json:"sender_email"`
	SMTPHost        string `json:"smtp_host"`
	SMTPPort        int    `json:"smtp_port"`
	DailyEnabled    bool   `json:"daily_enabled"`
	DailyTime       string `json:"daily_time"`
	WeeklyEnabled   bool   `json:"weekly_enabled"`
	WeeklyTime      string `json:"weekly_time"`
	WeeklyDay       int    `json:"weekly_day"`
	MonthlyEnabled  bool   `json:"monthly_enabled"`
	MonthlyTime     string `json:"monthly_time"`
}

// DashboardStats is the reporting aggregate behind the dashboard cards.
type DashboardStats struct {
	TodaySales    decimal.Decimal `json:"today_sales"`
	TodayRevenue  decimal.Decimal `json:"today_revenue"`
	TodayProfit   decimal.Decimal `json:"today_profit"`
	MonthRevenue  decimal.Decimal `json:"month_revenue"`
	LowStockCount int             `json:"low_stock_count"`
	TotalProducts int             `json:"total_products"`
}

// ReportRow is one line of a daily/weekly/monthly report.
type ReportRow struct {
	Label    string          `json:"label"`
	Sales    int             `json:"sales"`
	Revenue  decimal.Decimal `json:"revenue"`
	Profit   decimal.Decimal `json:"profit"`
	ItemsNum int             `json:"items"`
}

// Report is a reporting aggregate for one period.
type Report struct {
	Period       string          `json:"period"`
	TotalSales   int             `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	Rows         []ReportRow     `json:"rows"`
}
